package vm

import "github.com/dark-riscv/rvsim/internal/isa"

// Registers holds the 32 general-purpose integers plus PC. zero always
// reads 0; writes to it are discarded at the Set boundary rather than
// threaded through every handler, matching spec.md §4.5's "aliased to a
// sink" phrasing, here just a guarded write.
type Registers struct {
	x  [isa.NumRegisters]uint32
	PC uint32
}

func (r *Registers) Get(reg isa.Reg) uint32 {
	return r.x[reg]
}

func (r *Registers) Set(reg isa.Reg, value uint32) {
	if reg == 0 {
		return
	}
	r.x[reg] = value
}

func (r *Registers) GetSigned(reg isa.Reg) int32 { return int32(r.Get(reg)) }
