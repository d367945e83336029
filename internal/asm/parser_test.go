package asm

import (
	"strings"
	"testing"

	"github.com/dark-riscv/rvsim/internal/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Result {
	t.Helper()
	p := NewParser("test.s", nil)
	res, err := p.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return res
}

func TestParse_LabelsAndSections(t *testing.T) {
	res := parse(t, `
.text
.globl main
main:
	addi a0, zero, 1
	ret
`)
	require.Contains(t, res.Labels, "main")
	assert.True(t, res.Labels["main"].Global)
	assert.Equal(t, SectionText, res.Labels["main"].Section)
	assert.Equal(t, 0, res.Labels["main"].Index)
	require.Len(t, res.Items, 2)

	instr, ok := res.Items[0].(*Instruction)
	require.True(t, ok)
	assert.Equal(t, isa.OpAddi, instr.Op)
}

func TestParse_SharedLineLabel(t *testing.T) {
	res := parse(t, `
.data
x: .word 42
`)
	require.Contains(t, res.Labels, "x")
	require.Len(t, res.Items, 1)
	data, ok := res.Items[0].(*IntegerData)
	require.True(t, ok)
	assert.Equal(t, int64(42), data.Value)
}

func TestParse_DuplicateLabelFails(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader(`
.text
a:
	ret
a:
	ret
`))
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.ErrorIs(t, syn.Err, ErrDuplicateLabel)
}

func TestParse_LabelOutsideSectionFails(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader("a:\n"))
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.ErrorIs(t, syn.Err, ErrLabelOutsideSection)
}

func TestParse_UnknownMnemonicFails(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader(".text\nbogus a0, a1\n"))
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.ErrorIs(t, syn.Err, ErrUnknownMnemonic)
}

func TestParse_AlignRejectsTooLarge(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader(".text\n.align 20\n"))
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.ErrorIs(t, syn.Err, ErrInvalidLiteral)
}

func TestParse_Balign(t *testing.T) {
	res := parse(t, ".text\n.balign 16\n")
	require.Len(t, res.Items, 1)
	align, ok := res.Items[0].(*Alignment)
	require.True(t, ok)
	assert.EqualValues(t, 16, align.Bytes)
}

func TestParse_BalignRejectsTooLarge(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader(".text\n.balign 1048576\n"))
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.ErrorIs(t, syn.Err, ErrInvalidLiteral)
}

func TestParse_UnknownDirectiveWarnsOnce(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader(".text\n.weird\n.weird\n"))
	require.NoError(t, err)
	assert.Len(t, p.warnedDirectives, 1)
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	res := parse(t, `
# a comment
.text

main: # trailing comment
	ret # another
`)
	require.Contains(t, res.Labels, "main")
	require.Len(t, res.Items, 1)
}

func TestParse_Asciz(t *testing.T) {
	res := parse(t, ".rodata\nmsg: .asciz \"hi\\n\"\n")
	data, ok := res.Items[0].(*ASCIZ)
	require.True(t, ok)
	assert.Equal(t, "hi\n", data.Text)
}

func TestSyntaxError_Pretty(t *testing.T) {
	p := NewParser("test.s", nil)
	_, err := p.Parse(strings.NewReader(".text\nbogus\n"))
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	pretty := syn.Pretty(false)
	assert.Contains(t, pretty, "test.s:2")
	assert.Contains(t, pretty, "bogus")
}
