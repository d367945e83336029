package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dark-riscv/rvsim/internal/asm"
	"github.com/dark-riscv/rvsim/internal/isa"
	"github.com/dark-riscv/rvsim/internal/link"
)

const (
	testStackSize     = 0x10000
	testTotalStorage  = 0x20000000
	testMaxIterations = 100000
)

func mustParse(t *testing.T, fileName, src string) *asm.Result {
	t.Helper()
	p := asm.NewParser(fileName, nil)
	res, err := p.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return res
}

func mustLink(t *testing.T, srcs ...string) *link.Layout {
	t.Helper()
	files := make([]*asm.Result, len(srcs))
	for i, src := range srcs {
		files[i] = mustParse(t, "f.s", src)
	}
	layout, err := link.Link(files)
	require.NoError(t, err)
	return layout
}

func newTestMachine(t *testing.T, in *bytes.Buffer, out *bytes.Buffer, layout *link.Layout) *Machine {
	t.Helper()
	device := NewDevice(in, out, 10, true)
	m, err := NewMachine(layout, testStackSize, testTotalStorage, device)
	require.NoError(t, err)
	return m
}

// Scenario 1: hello-add. a0=2, a1=3, add, exit(a0) -> "Program returned: 5".
func TestRun_HelloAdd(t *testing.T) {
	src := `
.text
.globl main
main:
	li a0, 2
	li a1, 3
	add a0, a0, a1
	call exit
`
	layout := mustLink(t, src)
	out := &bytes.Buffer{}
	m := newTestMachine(t, &bytes.Buffer{}, out, layout)

	a0, err := m.Run(testMaxIterations)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), a0)
}

// Scenario 2: divide by zero faults at the dividing instruction's own pc.
func TestRun_DivideByZero(t *testing.T) {
	src := `
.text
.globl main
main:
	li a0, 10
	li a1, 0
	div a0, a0, a1
	call exit
`
	layout := mustLink(t, src)
	m := newTestMachine(t, &bytes.Buffer{}, &bytes.Buffer{}, layout)

	_, err := m.Run(testMaxIterations)
	require.Error(t, err)
	fault, ok := err.(*Fault)
	require.True(t, ok)
	assert.Equal(t, DivideByZero, fault.Kind)
	assert.Equal(t, layout.Symbols["main"]+8, fault.PC)
}

// Scenario 3: a loop whose branch runs three times (taken twice, then
// falling through once), exercising the predictor's taken/not-taken
// bookkeeping.
func TestRun_BranchPredictorStats(t *testing.T) {
	src := `
.text
.globl main
main:
	li a0, 0
	li a1, 3
loop:
	addi a0, a0, 1
	blt a0, a1, loop
	call exit
`
	layout := mustLink(t, src)
	device := NewDevice(&bytes.Buffer{}, &bytes.Buffer{}, 10, true)
	m, err := NewMachine(layout, testStackSize, testTotalStorage, device)
	require.NoError(t, err)

	a0, err := m.Run(testMaxIterations)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), a0)

	assert.Equal(t, uint64(3), device.Branches)
	assert.LessOrEqual(t, device.BPFailed, uint64(2))
}

// Scenario 4: printf with a plain string as its format prints it and returns
// the byte count in a0.
func TestRun_PrintfString(t *testing.T) {
	src := `
.rodata
msg: .asciz "hi\n"
.text
.globl main
main:
	la a0, msg
	call printf
	call exit
`
	layout := mustLink(t, src)
	out := &bytes.Buffer{}
	m := newTestMachine(t, &bytes.Buffer{}, out, layout)

	a0, err := m.Run(testMaxIterations)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out.String())
	assert.Equal(t, uint32(3), a0)
}

// Scenario 5: a call to a helper defined in a different file links and runs.
func TestRun_CrossFileGlobalCall(t *testing.T) {
	callerSrc := `
.text
.globl main
main:
	call helper
	call exit
`
	calleeSrc := `
.text
.globl helper
helper:
	li a0, 7
	ret
`
	layout := mustLink(t, callerSrc, calleeSrc)
	m := newTestMachine(t, &bytes.Buffer{}, &bytes.Buffer{}, layout)

	a0, err := m.Run(testMaxIterations)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), a0)
}

// Scenario 6: a misaligned word load faults with address=1, alignment=4.
func TestRun_MisalignedLoadFaults(t *testing.T) {
	src := `
.text
.globl main
main:
	li a0, 1
	lw a1, 0(a0)
	call exit
`
	layout := mustLink(t, src)
	m := newTestMachine(t, &bytes.Buffer{}, &bytes.Buffer{}, layout)

	_, err := m.Run(testMaxIterations)
	require.Error(t, err)
	fault, ok := err.(*Fault)
	require.True(t, ok)
	assert.Equal(t, LoadMisAligned, fault.Kind)
	assert.Equal(t, uint32(1), fault.Address)
	assert.Equal(t, uint32(4), fault.Alignment)
}

// Register x0 always reads 0, even after a write.
func TestRegisters_ZeroRegisterIsHardwired(t *testing.T) {
	var r Registers
	r.Set(0, 0xdeadbeef)
	assert.Equal(t, uint32(0), r.Get(0))
}

// The decode cache decodes each address at most once: iparse counts unique
// addresses decoded, not total executions, while the opcode counter counts
// every execution including cache hits.
func TestStep_DecodeCacheCountsOnce(t *testing.T) {
	src := `
.text
.globl main
main:
	li a0, 0
	li a1, 5
loop:
	addi a0, a0, 1
	blt a0, a1, loop
	call exit
`
	layout := mustLink(t, src)
	device := NewDevice(&bytes.Buffer{}, &bytes.Buffer{}, 10, true)
	m, err := NewMachine(layout, testStackSize, testTotalStorage, device)
	require.NoError(t, err)

	_, err = m.Run(testMaxIterations)
	require.NoError(t, err)

	// loop body (addi + blt) executes 5 times but decodes only twice; the
	// two li lines also expand to addi, so addi runs 2 + 5 = 7 times.
	addi, err := isa.LookupMnemonic("addi")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), device.Counters[addi])
	assert.LessOrEqual(t, device.IParse, uint64(10))
}
