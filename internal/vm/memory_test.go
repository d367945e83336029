package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dark-riscv/rvsim/internal/link"
)

func testLayout() *link.Layout {
	return &link.Layout{
		Text:     make([]byte, 0x1000),
		TextBase: link.HeapLimit, // irrelevant placement: these tests never touch text
		HeapBase: 0x20000,
	}
}

func TestNewMemory_StackCollidesWithHeapFails(t *testing.T) {
	layout := testLayout()
	layout.HeapBase = link.AddressSpaceEnd - 0x10 // leaves far too little room for any stack
	_, err := NewMemory(layout, 0x1000, testTotalStorage)
	assert.ErrorIs(t, err, ErrNotEnoughMemory)
}

func TestNewMemory_NotEnoughStorageFails(t *testing.T) {
	layout := testLayout()
	_, err := NewMemory(layout, 0x1000, 4) // far less than heap+stack actually need
	assert.ErrorIs(t, err, ErrNotEnoughMemory)
}

func TestSbrk_GrowsThenRefusesPastStack(t *testing.T) {
	layout := testLayout()
	mem, err := NewMemory(layout, 0x1000, testTotalStorage)
	require.NoError(t, err)

	before, ok := mem.Sbrk(0x100)
	require.True(t, ok)
	assert.Equal(t, layout.HeapBase, before)

	_, ok = mem.Sbrk(int32(link.HeapLimit))
	assert.False(t, ok, "sbrk must refuse to grow past the stack or heap limit")
}

func TestLoadStore_RoundTrip(t *testing.T) {
	layout := testLayout()
	layout.Data = make([]byte, 16)
	layout.DataBase = layout.HeapBase - 0x1000
	mem, err := NewMemory(layout, 0x1000, testTotalStorage)
	require.NoError(t, err)

	fault := mem.Store(0, layout.DataBase, 4, 0xdeadbeef)
	require.Nil(t, fault)
	v, fault := mem.Load(0, layout.DataBase, 4)
	require.Nil(t, fault)
	assert.Equal(t, uint32(0xdeadbeef), v)
}

func TestPredictor_ColdStartIsWeaklyNotTaken(t *testing.T) {
	p := NewPredictor(4)
	assert.False(t, p.Predict(0x1000))
}

func TestPredictor_SaturatesAndFlips(t *testing.T) {
	p := NewPredictor(4)
	for i := 0; i < 3; i++ {
		p.Update(0x1000, true)
	}
	assert.True(t, p.Predict(0x1000))
	for i := 0; i < 4; i++ {
		p.Update(0x1000, false)
	}
	assert.False(t, p.Predict(0x1000))
}
