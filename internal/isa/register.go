// Package isa implements the RV32IM instruction formats: bit-field
// packing/unpacking and the encode/decode bijection over the supported
// opcode set. It has no knowledge of assembly syntax, symbols, or memory —
// it only knows how a 32-bit word maps to a typed instruction and back.
package isa

import "fmt"

// Reg identifies one of the 32 general purpose integer registers by its
// 5-bit encoding (0 = x0/zero .. 31 = x31/t6).
type Reg uint8

// NumRegisters is the size of the RV32 integer register file.
const NumRegisters = 32

// abiNames is indexed by Reg and gives the canonical RISC-V ABI mnemonic,
// matching the register model in spec.md §3.
var abiNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// String returns the ABI name of the register (e.g. "a0", "sp").
func (r Reg) String() string {
	if int(r) >= len(abiNames) {
		return fmt.Sprintf("x%d", r)
	}
	return abiNames[r]
}

var nameToReg = func() map[string]Reg {
	m := make(map[string]Reg, len(abiNames)*2)
	for i, name := range abiNames {
		m[name] = Reg(i)
		m[fmt.Sprintf("x%d", i)] = Reg(i)
	}
	return m
}()

// ParseReg resolves an ABI register name ("a0", "sp", ...) or a raw "x<n>"
// name to its register index. It is the only accepted spelling for operand
// parsing in the assembler.
func ParseReg(name string) (Reg, error) {
	if r, ok := nameToReg[name]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
}
