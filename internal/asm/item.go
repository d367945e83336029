package asm

import "github.com/dark-riscv/rvsim/internal/isa"

// Item is one assembled storage unit within a section: a data directive, a
// real instruction, or a pseudo-instruction still awaiting link-time
// expansion. The set is sealed (only this file's types implement it) so
// the linker's assembly-stage switch can be exhaustive.
type Item interface {
	item()
}

// Alignment pads the current section up to the next multiple of Bytes.
type Alignment struct {
	Bytes uint32
}

func (*Alignment) item() {}

// IntegerDataWidth is the size in bytes of an IntegerData item's value.
type IntegerDataWidth uint8

const (
	WidthByte IntegerDataWidth = 1
	WidthHalf IntegerDataWidth = 2
	WidthWord IntegerDataWidth = 4
)

// IntegerData is a `.byte`/`.half`/`.word` directive: a literal constant (or,
// for `.word` only, a label reference resolved to its absolute address —
// the common jump-table idiom) stored little-endian at Width bytes.
type IntegerData struct {
	Width  IntegerDataWidth
	Value  int64
	Symbol string // non-empty for a `.word label` reference; Width == WidthWord
}

func (*IntegerData) item() {}

// ASCIZ is a `.asciz`/`.string` directive: a NUL-terminated byte string.
type ASCIZ struct {
	Text string
}

func (*ASCIZ) item() {}

// ZeroBytes is a `.zero n` directive: n zero bytes (used for `.bss` too).
type ZeroBytes struct {
	Count uint32
}

func (*ZeroBytes) item() {}

// Instruction is a real (non-pseudo) RV32IM instruction. Operands that
// refer to a label instead of a literal immediate carry it in Symbol; the
// linker resolves Symbol against its own address once addresses are known.
type Instruction struct {
	Op     isa.Op
	Rd     isa.Reg
	Rs1    isa.Reg
	Rs2    isa.Reg
	Imm    int32
	Symbol string // non-empty when Imm is a placeholder for a label reference
	// PCRelative is true for branch/jal targets (offset = symbol - own
	// address); when false the linker encodes the symbol's absolute
	// address. The parser sets Symbol only on branch/jal operands, which
	// are PC-relative; la is a Pseudo, not an Instruction.
	PCRelative bool
}

func (*Instruction) item() {}

// PseudoKind distinguishes the handful of pseudo-instructions whose final
// encoding depends on link-time layout (distance to target), so they
// cannot be expanded to real Instructions during parsing.
type PseudoKind uint8

const (
	PseudoCall PseudoKind = iota
	PseudoTail
	PseudoLa
)

// Pseudo is a residual symbolic instruction which the linker expands
// during relaxation: `call`/`tail` shrink to one `jal` (rd=ra for call,
// rd=zero for tail) when the target fits a 21-bit PC-relative offset, else
// stay as the two-instruction auipc+jalr sequence; `la` always expands to
// auipc+addi (see SPEC_FULL
// §5 — a data symbol's distance from its own PC is not assumed small).
type Pseudo struct {
	Kind   PseudoKind
	Rd     isa.Reg // la's destination register; unused by call/tail
	Symbol string
}

func (*Pseudo) item() {}
