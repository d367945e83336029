package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReg_AbiNames(t *testing.T) {
	cases := map[string]Reg{
		"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
		"t0": 5, "t1": 6, "t2": 7,
		"s0": 8, "s1": 9,
		"a0": 10, "a7": 17,
		"s11": 27,
		"t6":  31,
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseReg(name)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseReg_RawXNames(t *testing.T) {
	got, err := ParseReg("x10")
	require.NoError(t, err)
	assert.Equal(t, Reg(10), got)
}

func TestParseReg_Unknown(t *testing.T) {
	_, err := ParseReg("bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRegister)
}

func TestReg_String(t *testing.T) {
	assert.Equal(t, "a0", Reg(10).String())
	assert.Equal(t, "x40", Reg(40).String())
}
