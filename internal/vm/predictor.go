package vm

import "github.com/dark-riscv/rvsim/pkg/utils"

// Predictor is a two-bit saturating-counter branch predictor indexed by a
// low-order slice of PC, matching spec.md §4.6 exactly. It never affects
// program semantics — only the bp_failed statistic.
type Predictor struct {
	counters []uint8 // 0..3 per slot: 0-1 predict not-taken, 2-3 predict taken
	mask     uint32
}

// NewPredictor builds a table of size 2^bits, indexed by (pc>>2)&mask so
// consecutive instruction addresses don't collide on their low zero bits.
func NewPredictor(bits uint) *Predictor {
	if bits == 0 {
		bits = 10
	}
	size := uint32(1) << bits
	counters := make([]uint8, size)
	for i := range counters {
		counters[i] = 1 // weakly not-taken, a conventional cold-start bias
	}
	return &Predictor{counters: counters, mask: size - 1}
}

func (p *Predictor) index(pc uint32) uint32 {
	return (pc >> 2) & p.mask
}

func (p *Predictor) Predict(pc uint32) bool {
	return p.counters[p.index(pc)] >= 2
}

func (p *Predictor) Update(pc uint32, taken bool) {
	i := p.index(pc)
	c := int(p.counters[i])
	if taken {
		c++
	} else {
		c--
	}
	p.counters[i] = uint8(utils.Clamp(c, 0, 3))
}
