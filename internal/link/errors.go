// Package link implements the five-stage linker: global symbol binding,
// per-section assembly of the input files, size estimation, pseudo-
// instruction relaxation, and final byte-image emission.
package link

import (
	"errors"

	"github.com/dark-riscv/rvsim/pkg/utils"
)

var (
	ErrDuplicateGlobalSymbol = errors.New("duplicate global symbol")
	ErrUndefinedGlobalSymbol = errors.New("global symbol declared but never defined")
	ErrUndefinedSymbol       = errors.New("undefined symbol reference")
	ErrLibcNameConflict      = errors.New("global symbol conflicts with a libc function name")
	ErrMissingEntryPoint     = errors.New("no \"main\" symbol defined")
	ErrOffsetOutOfRange      = errors.New("resolved offset does not fit the instruction's encoding")
)

func makeError(err error, format string, args ...any) error {
	return utils.MakeError(err, format, args...)
}
