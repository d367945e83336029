package link

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dark-riscv/rvsim/internal/asm"
)

func mustParse(t *testing.T, fileName, src string) *asm.Result {
	t.Helper()
	p := asm.NewParser(fileName, nil)
	res, err := p.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return res
}

func TestLink_HelloAddDeterministic(t *testing.T) {
	src := `
.text
.globl main
main:
	li a0, 2
	li a1, 3
	add a0, a0, a1
	call exit
`
	f := mustParse(t, "hello.s", src)

	layout1, err := Link([]*asm.Result{f})
	require.NoError(t, err)
	layout2, err := Link([]*asm.Result{mustParse(t, "hello.s", src)})
	require.NoError(t, err)

	assert.Equal(t, layout1.Text, layout2.Text)
	assert.Equal(t, layout1.EntryPC, layout2.EntryPC)
	assert.NotZero(t, layout1.EntryPC)
}

func TestLink_MissingMainFails(t *testing.T) {
	f := mustParse(t, "nomain.s", ".text\nfoo:\n\tadd a0, a0, a0\n")
	_, err := Link([]*asm.Result{f})
	assert.ErrorIs(t, err, ErrMissingEntryPoint)
}

func TestLink_DuplicateGlobalSymbolFails(t *testing.T) {
	a := mustParse(t, "a.s", ".text\n.globl main\nmain:\n\tcall exit\n")
	b := mustParse(t, "b.s", ".text\n.globl main\nmain:\n\tcall exit\n")
	_, err := Link([]*asm.Result{a, b})
	assert.ErrorIs(t, err, ErrDuplicateGlobalSymbol)
}

func TestLink_LibcNameConflictFails(t *testing.T) {
	f := mustParse(t, "bad.s", ".text\n.globl printf\nprintf:\n\tcall exit\n")
	_, err := Link([]*asm.Result{f})
	assert.ErrorIs(t, err, ErrLibcNameConflict)
}

func TestLink_UndefinedGlobalFails(t *testing.T) {
	f := mustParse(t, "undef.s", ".text\n.globl helper\nmain:\n\tcall exit\n")
	_, err := Link([]*asm.Result{f})
	assert.ErrorIs(t, err, ErrUndefinedGlobalSymbol)
}

func TestLink_CrossFileGlobalCall(t *testing.T) {
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
	ret
`
	caller := mustParse(t, "caller.s", callerSrc)
	callee := mustParse(t, "callee.s", calleeSrc)

	layout, err := Link([]*asm.Result{caller, callee})
	require.NoError(t, err)

	helperPC, ok := layout.Symbols["helper"]
	require.True(t, ok)
	assert.Greater(t, helperPC, layout.TextBase)
	assert.Equal(t, layout.Symbols["main"], layout.EntryPC)
}

func TestLink_SectionsAreContiguousAndNonOverlapping(t *testing.T) {
	src := `
.data
val: .word 42
.rodata
msg: .asciz "hi"
.bss
buf: .zero 16
.text
.globl main
main:
	la a0, msg
	la a2, val
	lw a1, 0(a2)
	call exit
`
	f := mustParse(t, "sections.s", src)
	layout, err := Link([]*asm.Result{f})
	require.NoError(t, err)

	assert.Less(t, layout.TextBase, layout.DataBase)
	assert.Less(t, layout.DataBase, layout.RodataBase)
	assert.Less(t, layout.RodataBase, layout.BssBase)
	assert.Less(t, layout.BssBase, layout.HeapBase)
	assert.Equal(t, 4, len(layout.Data))
	assert.Equal(t, 3, len(layout.Rodata))
	assert.Equal(t, uint32(16), uint32(len(layout.Bss)))
}

func TestLink_RelaxedCallFitsOneInstruction(t *testing.T) {
	src := `
.text
.globl main
main:
	call helper
.globl helper
helper:
	ret
`
	f := mustParse(t, "near.s", src)
	layout, err := Link([]*asm.Result{f})
	require.NoError(t, err)
	// helper is a few bytes after main; the call must have relaxed to a
	// single 4-byte jal, not the 8-byte auipc+jalr pair.
	helperPC := layout.Symbols["helper"]
	assert.Equal(t, layout.EntryPC+4, helperPC)
}
