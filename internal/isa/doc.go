package isa

import (
	"fmt"
	"strings"
)

// Documentation renders a human readable bit-layout diagram for op, in the
// style of the RISC-V ISA manual: opcode/funct3/funct7/register fields laid
// out over the 32-bit word, least significant bit on the right.
func (op Op) Documentation() string {
	d, ok := descs[op]
	if !ok {
		return fmt.Sprintf("%v: no encoding descriptor", op)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s (%s-type)\n\n", d.name, formatName(d.format)))
	builder.WriteString(drawFieldDiagram(fieldsFor(d), 32))
	return builder.String()
}

func formatName(f Format) string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

func fieldsFor(d desc) []field {
	opcodeField := field{Name: "opcode", Begin: 0, Width: 7}

	switch d.format {
	case FormatR:
		return []field{
			opcodeField,
			{Name: "rd", Begin: 7, Width: 5},
			{Name: "funct3", Begin: 12, Width: 3},
			{Name: "rs1", Begin: 15, Width: 5},
			{Name: "rs2", Begin: 20, Width: 5},
			{Name: "funct7", Begin: 25, Width: 7},
		}
	case FormatI:
		if d.isShift {
			return []field{
				opcodeField,
				{Name: "rd", Begin: 7, Width: 5},
				{Name: "funct3", Begin: 12, Width: 3},
				{Name: "rs1", Begin: 15, Width: 5},
				{Name: "shamt", Begin: 20, Width: 5},
				{Name: "funct7", Begin: 25, Width: 7},
			}
		}
		return []field{
			opcodeField,
			{Name: "rd", Begin: 7, Width: 5},
			{Name: "funct3", Begin: 12, Width: 3},
			{Name: "rs1", Begin: 15, Width: 5},
			{Name: "imm[11:0]", Begin: 20, Width: 12},
		}
	case FormatS:
		return []field{
			opcodeField,
			{Name: "imm[4:0]", Begin: 7, Width: 5},
			{Name: "funct3", Begin: 12, Width: 3},
			{Name: "rs1", Begin: 15, Width: 5},
			{Name: "rs2", Begin: 20, Width: 5},
			{Name: "imm[11:5]", Begin: 25, Width: 7},
		}
	case FormatB:
		return []field{
			opcodeField,
			{Name: "imm[11]", Begin: 7, Width: 1},
			{Name: "imm[4:1]", Begin: 8, Width: 4},
			{Name: "funct3", Begin: 12, Width: 3},
			{Name: "rs1", Begin: 15, Width: 5},
			{Name: "rs2", Begin: 20, Width: 5},
			{Name: "imm[10:5]", Begin: 25, Width: 6},
			{Name: "imm[12]", Begin: 31, Width: 1},
		}
	case FormatU:
		return []field{
			opcodeField,
			{Name: "rd", Begin: 7, Width: 5},
			{Name: "imm[31:12]", Begin: 12, Width: 20},
		}
	case FormatJ:
		return []field{
			opcodeField,
			{Name: "rd", Begin: 7, Width: 5},
			{Name: "imm[19:12]", Begin: 12, Width: 8},
			{Name: "imm[11]", Begin: 20, Width: 1},
			{Name: "imm[10:1]", Begin: 21, Width: 10},
			{Name: "imm[20]", Begin: 31, Width: 1},
		}
	default:
		return []field{opcodeField}
	}
}
