package asm

import (
	"errors"

	"github.com/dark-riscv/rvsim/pkg/utils"
)

var (
	ErrDuplicateLabel    = errors.New("label already defined")
	ErrLabelOutsideSection = errors.New("label must be defined inside a section")
	ErrUnknownDirective  = errors.New("unknown assembler directive")
	ErrUnknownMnemonic   = errors.New("unknown instruction or pseudo-instruction")
	ErrMalformedOperands = errors.New("malformed operand list")
	ErrInvalidLiteral    = errors.New("invalid integer literal")
)

func makeError(err error, format string, args ...any) error {
	return utils.MakeError(err, format, args...)
}
