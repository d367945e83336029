package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, in Decoded) uint32 {
	t.Helper()
	word, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(word)
	require.NoError(t, err)
	assert.Equal(t, in, out, "decode(encode(%v)) mismatch", in)

	word2, err := Encode(out)
	require.NoError(t, err)
	assert.Equal(t, word, word2, "encode(decode(word)) != word")
	return word
}

func TestRoundTrip_RType(t *testing.T) {
	for _, op := range []Op{OpAdd, OpSub, OpSll, OpSlt, OpSltu, OpXor, OpSrl, OpSra, OpOr, OpAnd,
		OpMul, OpMulh, OpMulhsu, OpMulhu, OpDiv, OpDivu, OpRem, OpRemu} {
		t.Run(op.String(), func(t *testing.T) {
			roundTrip(t, Decoded{Op: op, Rd: 5, Rs1: 10, Rs2: 15})
		})
	}
}

func TestRoundTrip_IType(t *testing.T) {
	for _, op := range []Op{OpAddi, OpSlti, OpSltiu, OpXori, OpOri, OpAndi, OpLb, OpLh, OpLw, OpLbu, OpLhu, OpJalr} {
		t.Run(op.String(), func(t *testing.T) {
			roundTrip(t, Decoded{Op: op, Rd: 3, Rs1: 7, Imm: -100})
		})
	}
}

func TestRoundTrip_IType_Shifts(t *testing.T) {
	for _, op := range []Op{OpSlli, OpSrli, OpSrai} {
		t.Run(op.String(), func(t *testing.T) {
			roundTrip(t, Decoded{Op: op, Rd: 3, Rs1: 7, Imm: 17})
		})
	}
}

func TestRoundTrip_SType(t *testing.T) {
	for _, op := range []Op{OpSb, OpSh, OpSw} {
		t.Run(op.String(), func(t *testing.T) {
			roundTrip(t, Decoded{Op: op, Rs1: 2, Rs2: 9, Imm: -2048})
		})
	}
}

func TestRoundTrip_BType(t *testing.T) {
	for _, op := range []Op{OpBeq, OpBne, OpBlt, OpBge, OpBltu, OpBgeu} {
		t.Run(op.String(), func(t *testing.T) {
			roundTrip(t, Decoded{Op: op, Rs1: 1, Rs2: 2, Imm: -4096})
		})
	}
}

func TestRoundTrip_JType(t *testing.T) {
	roundTrip(t, Decoded{Op: OpJal, Rd: 1, Imm: 2046})
	roundTrip(t, Decoded{Op: OpJal, Rd: 1, Imm: -2048})
}

func TestRoundTrip_UType(t *testing.T) {
	roundTrip(t, Decoded{Op: OpLui, Rd: 5, Imm: int32(0xabcde000)})
	roundTrip(t, Decoded{Op: OpAuipc, Rd: 5, Imm: int32(0x12345000)})
}

func TestDecode_UnknownOpcode(t *testing.T) {
	_, err := Decode(0b1111111)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownInstruction)
}

func TestDecode_UnknownFunct7(t *testing.T) {
	word, err := Encode(Decoded{Op: OpAdd, Rd: 1, Rs1: 2, Rs2: 3})
	require.NoError(t, err)

	// Keep add's opcode and funct3 but set funct7 to 0b1111111, which no
	// R-type op defines.
	view(&word).Write(0b1111111, 25, 7)
	_, err = Decode(word)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownInstruction)
}

func TestEncode_ImmediateOutOfRange(t *testing.T) {
	_, err := Encode(Decoded{Op: OpAddi, Rd: 1, Rs1: 2, Imm: 1 << 12})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImmediateOutOfRange)

	_, err = Encode(Decoded{Op: OpJal, Rd: 1, Imm: 1 << 21})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImmediateOutOfRange)

	_, err = Encode(Decoded{Op: OpJal, Rd: 1, Imm: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImmediateOutOfRange)
}

func TestEncode_UTypeRejectsLowBits(t *testing.T) {
	_, err := Encode(Decoded{Op: OpLui, Rd: 1, Imm: 0x1001})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImmediateOutOfRange)
}
