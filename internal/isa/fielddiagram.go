package isa

import (
	"fmt"
	"strings"
)

// field describes one bit range of a 32-bit instruction word for the
// purposes of Documentation's ascii diagram: Begin is the first bit of
// the range, Width its size in bits.
type field struct {
	Name  string
	Begin int
	Width int
}

func (f field) topBit() int {
	return f.Begin + f.Width - 1
}

// fillFieldGaps inserts "(unused)" placeholders so the returned slice
// covers every bit of a frameWidth-bit word, assuming fields arrive
// sorted by Begin and non-overlapping.
func fillFieldGaps(fields []field, frameWidth int) []field {
	result := make([]field, 0, len(fields))
	bit := 0

	for _, f := range fields {
		if f.Begin > bit {
			result = append(result, field{Name: "(unused)", Begin: bit, Width: f.Begin - bit})
		} else if f.Begin < bit {
			panic("fields must be sorted by position and non-overlapping")
		}
		result = append(result, f)
		bit = f.topBit() + 1
	}

	if bit < frameWidth {
		result = append(result, field{Name: "(unused)", Begin: bit, Width: frameWidth - bit})
	}

	return result
}

func maxLen(values ...string) int {
	max := 0
	for _, v := range values {
		if len(v) > max {
			max = len(v)
		}
	}
	return max
}

func padCenter(text string, filler string, length int) string {
	left := (length - len(text)) / 2
	right := length - len(text) - left
	return strings.Repeat(filler, left) + text + strings.Repeat(filler, right)
}

// drawFieldDiagram renders fields over a frameWidth-bit word as a five
// line ascii diagram: bit indices, a border, field names, a border, and
// each field's width, read most-significant-bit first (the layout the
// RISC-V ISA manual and Documentation both use).
func drawFieldDiagram(fields []field, frameWidth int) string {
	all := fillFieldGaps(fields, frameWidth)

	type entry struct {
		index, name, width string
		cellWidth          int
	}

	entries := make([]entry, len(all))
	for i := range all {
		f := all[len(all)-i-1]
		e := &entries[i]
		e.index = fmt.Sprintf("%d", f.topBit())
		e.name = fmt.Sprintf(" %s ", f.Name)
		e.width = fmt.Sprintf(" %d bits ", f.Width)
		e.cellWidth = maxLen(e.index, e.name, "<-"+e.width+"->")
	}

	var indices, header, body, footer, widths strings.Builder
	for _, e := range entries {
		indices.WriteString(e.index)
		indices.WriteString(strings.Repeat(" ", e.cellWidth-len(e.index)+1))
		header.WriteString("+" + strings.Repeat("-", e.cellWidth))
		body.WriteString("|" + padCenter(e.name, " ", e.cellWidth))
		footer.WriteString("+" + strings.Repeat("-", e.cellWidth))
		widths.WriteString(" <-" + padCenter(e.width, "-", e.cellWidth-4) + "->")
	}
	indices.WriteString("0")
	header.WriteString("+")
	body.WriteString("|")
	footer.WriteString("+")

	return strings.Join([]string{indices.String(), header.String(), body.String(), footer.String(), widths.String()}, "\n") + "\n"
}
