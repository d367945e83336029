package link

import "github.com/dark-riscv/rvsim/internal/asm"

// region is the link-internal counterpart of asm.Section, adding the
// synthetic libc region so a Location can point at either kind of symbol
// uniformly.
type region uint8

const (
	regionText region = iota
	regionData
	regionRodata
	regionBss
	regionLibc
	regionCount
)

func regionOf(s asm.Section) region {
	switch s {
	case asm.SectionText:
		return regionText
	case asm.SectionData:
		return regionData
	case asm.SectionRodata:
		return regionRodata
	case asm.SectionBss:
		return regionBss
	default:
		return regionText
	}
}

// Location is the indirection a symbol resolves through: a region plus an
// index into that region's item list. Resolving to an absolute address
// requires the Layout produced by estimate(), so Location by itself is
// layout-independent and safe to compute during symbol binding, before
// section sizes are known — the same design spec.md's Open Question (i)
// notes, expressed as a (region, index) pair instead of a raw pointer into
// a growable vector.
type Location struct {
	Region region
	Index  int
}

// symbolTable maps a name (global across all files, or local to one file)
// to where it was defined.
type symbolTable map[string]Location
