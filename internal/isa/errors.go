package isa

import (
	"errors"

	"github.com/dark-riscv/rvsim/pkg/utils"
)

var (
	// ErrUnknownRegister is returned by ParseReg for an unrecognized ABI name.
	ErrUnknownRegister = errors.New("unknown register name")
	// ErrUnknownInstruction is returned by Decode when no supported
	// opcode/funct3/funct7 combination matches the word. Decode is the
	// only path by which a raw word becomes a typed instruction, so this
	// is the single place an "illegal instruction" fault can originate.
	ErrUnknownInstruction = errors.New("unknown instruction encoding")
	// ErrImmediateOutOfRange is returned by Encode when an immediate does
	// not fit the target format's bit width (the linker surfaces it at
	// emission when a resolved offset does not fit its instruction).
	ErrImmediateOutOfRange = errors.New("immediate out of range for encoding")
	// ErrUnknownMnemonic is returned when building an instruction for a
	// mnemonic with no format descriptor.
	ErrUnknownMnemonic = errors.New("unknown instruction mnemonic")
)

func makeError(err error, format string, args ...any) error {
	return utils.MakeError(err, format, args...)
}
