package link

import "github.com/dark-riscv/rvsim/internal/asm"

// relax shrinks every call/tail Pseudo whose resolved target now fits a
// single jal's 21-bit signed, 2-byte-aligned PC-relative range from
// the provisional 8-byte auipc+jalr pair down to 4 bytes. It must run
// after one estimate() pass (so every item has a provisional address) and
// before the second (so the shrink is reflected in final offsets) —
// exactly the relaxation step in original_source's five-stage pipeline.
//
// la is never relaxed: it always expands to auipc+addi regardless of
// range, per the fixed-width addressing contract callers rely on.
func (l *Linker) relax(layout *Layout) error {
	fileIndexOf := l.fileIndexByFirstAppearance()

	for i := range l.regions[regionText] {
		p := &l.regions[regionText][i]
		pseudo, ok := p.item.(*asm.Pseudo)
		if !ok || pseudo.Kind == asm.PseudoLa {
			continue
		}

		fi := fileIndexOf[p.file]
		loc, ok := l.lookup(fi, pseudo.Symbol)
		if !ok {
			return makeError(ErrUndefinedSymbol, "%q", pseudo.Symbol)
		}

		target := l.itemAddress(layout, loc.Region, loc.Index)
		own := l.itemAddress(layout, regionText, i)
		delta := int64(target) - int64(own)

		if fitsSigned(delta, 21) && delta%2 == 0 {
			p.pseudoSize = 4
		} else {
			p.pseudoSize = 8
		}
	}
	return nil
}

func fitsSigned(v int64, width uint) bool {
	lo := -(int64(1) << (width - 1))
	hi := int64(1)<<(width-1) - 1
	return v >= lo && v <= hi
}

// fileIndexByFirstAppearance recovers the same file numbering addFile used,
// from the file name each placedItem remembers.
func (l *Linker) fileIndexByFirstAppearance() map[string]int {
	out := make(map[string]int)
	idx := 0
	for r := range l.regions {
		for i := range l.regions[r] {
			name := l.regions[r][i].file
			if _, ok := out[name]; !ok {
				out[name] = idx
				idx++
			}
		}
	}
	return out
}
