package vm

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dark-riscv/rvsim/internal/isa"
)

// Device owns everything outside the registers and memory proper: the
// host I/O streams libc stubs read and write through, the per-opcode
// execution counters, and the optional branch predictor — grounded on
// original_source's Device{Counter, in, out}, expressed here as plain
// owned state rather than a pimpl'd singleton (spec.md §9 "no process-wide
// state" note).
type Device struct {
	Counters map[isa.Op]uint64
	IParse   uint64
	BPFailed uint64
	Branches uint64

	Predictor *Predictor

	In  io.Reader
	Out io.Writer
}

func NewDevice(in io.Reader, out io.Writer, predictorBits uint, enablePredictor bool) *Device {
	d := &Device{
		Counters: make(map[isa.Op]uint64),
		In:       in,
		Out:      out,
	}
	if enablePredictor {
		d.Predictor = NewPredictor(predictorBits)
	}
	return d
}

func (d *Device) count(op isa.Op) { d.Counters[op]++ }

// Predict asks the predictor (if enabled) for its guess, compares it to
// the real outcome, updates the miss counter, then feeds the outcome back
// — exactly the contract in spec.md §4.6.
func (d *Device) Predict(pc uint32, taken bool) {
	d.Branches++
	if d.Predictor == nil {
		return
	}
	if d.Predictor.Predict(pc) != taken {
		d.BPFailed++
	}
	d.Predictor.Update(pc, taken)
}

// PrintDetails writes a per-opcode execution breakdown, the --detail flag's
// output, styled with the teacher's own fatih/color dependency.
func (d *Device) PrintDetails(w io.Writer, useColor bool) {
	header := "instruction counts"
	if useColor {
		header = color.New(color.FgCyan, color.Bold).Sprint(header)
	}
	fmt.Fprintln(w, header)
	for op, n := range d.Counters {
		fmt.Fprintf(w, "  %-8s %d\n", op.String(), n)
	}
	fmt.Fprintf(w, "  %-8s %d\n", "iparse", d.IParse)
	if d.Predictor != nil {
		fmt.Fprintf(w, "  %-8s %d/%d\n", "bp_failed", d.BPFailed, d.Branches)
	}
}
