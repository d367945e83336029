package link

import (
	"github.com/dark-riscv/rvsim/internal/asm"
	"github.com/dark-riscv/rvsim/internal/isa"
	"github.com/dark-riscv/rvsim/internal/libc"
)

// placedItem pairs a source Item with the bookkeeping the estimate/relax/
// emit stages need: which file it came from (for error messages), its
// current size estimate, and its offset within its region once that
// estimate has been turned into a layout.
type placedItem struct {
	item   asm.Item
	file   string
	// pseudoSize is the current size estimate for a *asm.Pseudo item (8
	// before relaxation decides it fits in one instruction, 4 after).
	// Unused for every other Item kind, whose size is fixed by its type.
	pseudoSize uint32
	offset     uint32
}

// Linker runs the five-stage pipeline over a set of already-parsed files.
type Linker struct {
	regions [regionCount][]placedItem
	global  symbolTable
	locals  []symbolTable
}

// Link binds, lays out, relaxes and emits a set of parsed files into a
// final Layout. Order matters: symbols resolve across files exactly as
// given, with the first file's "main" (if ambiguous with others — a
// duplicate — it is a fatal global symbol collision, not a silent pick).
func Link(files []*asm.Result) (*Layout, error) {
	l := &Linker{global: make(symbolTable), locals: make([]symbolTable, len(files))}

	if err := l.bindLibc(); err != nil {
		return nil, err
	}
	for i, f := range files {
		if err := l.addFile(i, f); err != nil {
			return nil, err
		}
	}

	layout := &Layout{Symbols: make(map[string]uint32), LibcBase: libc.Base}
	l.estimate(layout)
	if err := l.relax(layout); err != nil {
		return nil, err
	}
	l.estimate(layout)

	if err := l.resolveSymbols(layout); err != nil {
		return nil, err
	}

	return l.emit(layout)
}

// bindLibc registers every libc stub name in the global table first, so
// user code can never shadow one (original_source: add_libc runs before
// any file is added).
func (l *Linker) bindLibc() error {
	for i := range libc.Names {
		l.global[libc.Names[i]] = Location{Region: regionLibc, Index: i}
	}
	return nil
}

// addFile splits one file's flat Items into per-region placed slices using
// its Sections transition list, then binds its labels (global into the
// shared table, local into its own), exactly mirroring
// original_source's Linker::add_file.
func (l *Linker) addFile(fileIndex int, f *asm.Result) error {
	local := make(symbolTable)
	l.locals[fileIndex] = local

	runs := f.Sections
	if len(runs) == 0 && len(f.Items) > 0 {
		runs = []asm.SectionRun{{Start: 0, Section: asm.SectionText}}
	}

	// flatToLocation maps a flat Items index to where it landed.
	flatToLocation := make([]Location, len(f.Items))

	for ri, run := range runs {
		end := len(f.Items)
		if ri+1 < len(runs) {
			end = runs[ri+1].Start
		}
		reg := regionOf(run.Section)
		for flat := run.Start; flat < end; flat++ {
			loc := Location{Region: reg, Index: len(l.regions[reg])}
			l.regions[reg] = append(l.regions[reg], placedItem{item: f.Items[flat], file: f.FileName, pseudoSize: 8})
			flatToLocation[flat] = loc
		}
	}

	for name, label := range f.Labels {
		if label.DefLine == 0 {
			if label.Global {
				return makeError(ErrUndefinedGlobalSymbol, "%q in %s", name, f.FileName)
			}
			continue
		}
		loc := flatToLocation[label.Index]
		if label.Global {
			if _, isLibc := libc.Index(name); isLibc {
				return makeError(ErrLibcNameConflict, "%q", name)
			}
			if _, exists := l.global[name]; exists {
				return makeError(ErrDuplicateGlobalSymbol, "%q", name)
			}
			l.global[name] = loc
		} else {
			local[name] = loc
		}
	}

	return nil
}

// lookup resolves a symbol first against the file-local table, then the
// global table.
func (l *Linker) lookup(fileIndex int, name string) (Location, bool) {
	if loc, ok := l.locals[fileIndex][name]; ok {
		return loc, true
	}
	loc, ok := l.global[name]
	return loc, ok
}

// itemSize returns the byte footprint of a single placed item under the
// current (possibly not yet final) size estimates.
func itemSize(p *placedItem) uint32 {
	switch it := p.item.(type) {
	case *asm.Alignment:
		return 0
	case *asm.IntegerData:
		return uint32(it.Width)
	case *asm.ASCIZ:
		return uint32(len(it.Text)) + 1
	case *asm.ZeroBytes:
		return it.Count
	case *asm.Instruction:
		return 4
	case *asm.Pseudo:
		return p.pseudoSize
	default:
		return 0
	}
}

func itemAlign(item asm.Item) uint32 {
	switch it := item.(type) {
	case *asm.Alignment:
		return it.Bytes
	case *asm.IntegerData:
		return uint32(it.Width)
	case *asm.Instruction, *asm.Pseudo:
		return 4
	default:
		return 1
	}
}

// estimate computes every item's offset within its region and every
// region's total size and base address. Calling it twice (before and
// after relax) is sufficient because relaxation only ever shrinks a
// Pseudo's size — offsets can only decrease, so a second pass converges
// (spec.md's "monotonic relaxation" note).
func (l *Linker) estimate(layout *Layout) {
	var sizes [regionCount]uint32
	for r := range l.regions {
		var offset uint32
		for i := range l.regions[r] {
			p := &l.regions[r][i]
			offset = alignUp(offset, itemAlign(p.item))
			p.offset = offset
			offset += itemSize(p)
		}
		sizes[r] = offset
	}

	layout.LibcBase = libc.Base
	layout.TextBase = libc.End
	layout.DataBase = alignUp(layout.TextBase+sizes[regionText], sectionAlign)
	layout.RodataBase = alignUp(layout.DataBase+sizes[regionData], sectionAlign)
	layout.BssBase = alignUp(layout.RodataBase+sizes[regionRodata], sectionAlign)
	layout.HeapBase = alignUp(layout.BssBase+sizes[regionBss], sectionAlign)
}

// itemAddress resolves a Location to its final absolute address. Libc stubs
// never occupy a placedItem slot — they are synthetic 4-byte-spaced PCs
// assigned by internal/libc — so they're addressed directly by index
// rather than through l.regions, which only holds assembled user items.
func (l *Linker) itemAddress(layout *Layout, r region, index int) uint32 {
	if r == regionLibc {
		return layout.LibcBase + uint32(index)*4
	}
	return layout.baseOf(r) + l.regions[r][index].offset
}

// resolveSymbols turns every Location the binder produced into its final
// absolute address, once estimate() has fixed every region's base.
func (l *Linker) resolveSymbols(layout *Layout) error {
	for name, loc := range l.global {
		layout.Symbols[name] = l.itemAddress(layout, loc.Region, loc.Index)
	}
	if pc, ok := layout.Symbols["main"]; ok {
		layout.EntryPC = pc
	} else {
		return makeError(ErrMissingEntryPoint, "")
	}
	return nil
}

// resolveLocal resolves a symbol reference appearing in file fileIndex,
// preferring that file's local table.
func (l *Linker) resolveLocal(layout *Layout, fileIndex int, name string) (uint32, error) {
	loc, ok := l.lookup(fileIndex, name)
	if !ok {
		return 0, makeError(ErrUndefinedSymbol, "%q", name)
	}
	return l.itemAddress(layout, loc.Region, loc.Index), nil
}

// emit walks every region's items in order and produces the final byte
// images, resolving every symbolic Instruction/Pseudo against layout.
func (l *Linker) emit(layout *Layout) (*Layout, error) {
	fileIndexOf := l.fileIndexByFirstAppearance()

	var err error
	layout.Text, err = l.emitRegion(layout, regionText, fileIndexOf)
	if err != nil {
		return nil, err
	}
	layout.Data, err = l.emitRegion(layout, regionData, fileIndexOf)
	if err != nil {
		return nil, err
	}
	layout.Rodata, err = l.emitRegion(layout, regionRodata, fileIndexOf)
	if err != nil {
		return nil, err
	}
	layout.Bss, err = l.emitRegion(layout, regionBss, fileIndexOf)
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (l *Linker) emitRegion(layout *Layout, r region, fileIndexOf map[string]int) ([]byte, error) {
	items := l.regions[r]
	var size uint32
	if n := len(items); n > 0 {
		size = items[n-1].offset + itemSize(&items[n-1])
	}
	buf := make([]byte, size)

	for i := range items {
		p := &items[i]
		fi := fileIndexOf[p.file]
		if err := l.emitItem(layout, r, i, fi, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (l *Linker) emitItem(layout *Layout, r region, index, fileIndex int, buf []byte) error {
	p := &l.regions[r][index]
	off := p.offset

	switch it := p.item.(type) {
	case *asm.Alignment:
		return nil
	case *asm.IntegerData:
		value := it.Value
		if it.Symbol != "" {
			addr, err := l.resolveLocal(layout, fileIndex, it.Symbol)
			if err != nil {
				return err
			}
			value = int64(addr)
		}
		putLittleEndian(buf[off:], uint64(value), int(it.Width))
		return nil
	case *asm.ASCIZ:
		copy(buf[off:], it.Text)
		buf[off+uint32(len(it.Text))] = 0
		return nil
	case *asm.ZeroBytes:
		return nil // buf is already zero-valued
	case *asm.Instruction:
		word, err := l.encodeInstruction(layout, r, index, fileIndex, it)
		if err != nil {
			return err
		}
		putLittleEndian(buf[off:], uint64(word), 4)
		return nil
	case *asm.Pseudo:
		return l.emitPseudo(layout, r, index, fileIndex, it, buf)
	default:
		return nil
	}
}

func (l *Linker) encodeInstruction(layout *Layout, r region, index, fileIndex int, in *asm.Instruction) (uint32, error) {
	dec := isa.Decoded{Op: in.Op, Rd: in.Rd, Rs1: in.Rs1, Rs2: in.Rs2, Imm: in.Imm}
	if in.Symbol != "" {
		target, err := l.resolveLocal(layout, fileIndex, in.Symbol)
		if err != nil {
			return 0, err
		}
		if in.PCRelative {
			own := l.itemAddress(layout, r, index)
			dec.Imm = int32(target - own)
		} else {
			dec.Imm = int32(target)
		}
	}
	return isa.Encode(dec)
}

func putLittleEndian(buf []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
