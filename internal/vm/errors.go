// Package vm implements the fetch-decode-execute interpreter: a segmented
// memory with a self-rewriting decode cache, a 32-register file, the
// optional branch predictor, and the libc stub dispatch table.
package vm

import (
	"errors"

	"github.com/dark-riscv/rvsim/pkg/utils"
)

var ErrNotEnoughMemory = errors.New("not enough memory for the requested layout")

func makeError(err error, format string, args ...any) error {
	return utils.MakeError(err, format, args...)
}
