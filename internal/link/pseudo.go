package link

import (
	"github.com/dark-riscv/rvsim/internal/asm"
	"github.com/dark-riscv/rvsim/internal/isa"
)

// Scratch registers the call/tail/la expansions use, matching the
// standard RV32 calling-convention choice: call links through ra, tail
// jumps through t1 since it must not clobber ra, la borrows its own
// destination register.
const (
	regRa = isa.Reg(1)
	regT1 = isa.Reg(6)
	regZero = isa.Reg(0)
)

// emitPseudo encodes a call/tail/la expansion, choosing the relaxed
// single-instruction form when relax() shrank this item to 4 bytes.
func (l *Linker) emitPseudo(layout *Layout, r region, index, fileIndex int, p *asm.Pseudo, buf []byte) error {
	item := &l.regions[r][index]
	own := l.itemAddress(layout, r, index)

	target, err := l.resolveLocal(layout, fileIndex, p.Symbol)
	if err != nil {
		return err
	}
	delta := int64(target) - int64(own)

	if item.pseudoSize == 4 {
		return l.emitPseudoShort(p, delta, own, buf[item.offset:])
	}
	return l.emitPseudoLong(p, delta, own, buf[item.offset:])
}

func (l *Linker) emitPseudoShort(p *asm.Pseudo, delta int64, own uint32, buf []byte) error {
	var dec isa.Decoded
	switch p.Kind {
	case asm.PseudoCall:
		dec = isa.Decoded{Op: isa.OpJal, Rd: regRa, Imm: int32(delta)}
	case asm.PseudoTail:
		dec = isa.Decoded{Op: isa.OpJal, Rd: regZero, Imm: int32(delta)}
	default:
		return makeError(ErrOffsetOutOfRange, "pseudo kind %d has no short form", p.Kind)
	}
	word, err := isa.Encode(dec)
	if err != nil {
		return err
	}
	putLittleEndian(buf, uint64(word), 4)
	return nil
}

func (l *Linker) emitPseudoLong(p *asm.Pseudo, delta int64, own uint32, buf []byte) error {
	upper := (uint32(delta) + 0x800) &^ 0xfff
	lower := int32(uint32(delta) - upper)

	var scratch isa.Reg
	var second isa.Decoded
	switch p.Kind {
	case asm.PseudoCall:
		scratch = regRa
		second = isa.Decoded{Op: isa.OpJalr, Rd: regRa, Rs1: regRa, Imm: lower}
	case asm.PseudoTail:
		scratch = regT1
		second = isa.Decoded{Op: isa.OpJalr, Rd: regZero, Rs1: regT1, Imm: lower}
	case asm.PseudoLa:
		scratch = p.Rd
		second = isa.Decoded{Op: isa.OpAddi, Rd: p.Rd, Rs1: p.Rd, Imm: lower}
	default:
		return makeError(ErrOffsetOutOfRange, "unknown pseudo kind %d", p.Kind)
	}

	first := isa.Decoded{Op: isa.OpAuipc, Rd: scratch, Imm: int32(upper)}

	firstWord, err := isa.Encode(first)
	if err != nil {
		return err
	}
	secondWord, err := isa.Encode(second)
	if err != nil {
		return err
	}
	putLittleEndian(buf[0:], uint64(firstWord), 4)
	putLittleEndian(buf[4:], uint64(secondWord), 4)
	return nil
}
