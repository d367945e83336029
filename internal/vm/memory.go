package vm

import "github.com/dark-riscv/rvsim/internal/link"

// Memory is the segmented RV32 address space: libc stubs, text, data,
// rodata, bss, an sbrk-grown heap, and a fixed-top stack. Every region's
// base and backing bytes come straight from the linker's Layout; Memory
// adds the runtime-only pieces (heap growth, the stack, the decode cache).
type Memory struct {
	text   []byte
	data   []byte
	rodata []byte
	bss    []byte

	textBase, dataBase, rodataBase, bssBase uint32

	heap     []byte
	heapBase uint32
	heapTop  uint32 // current sbrk frontier
	heapLimit uint32

	stack       []byte
	stackBottom uint32
	stackTop    uint32

	slots []Executable // one per 4-byte text word
}

// NewMemory builds the runtime address space from a linked Layout.
// stackSize bytes are reserved below link.AddressSpaceEnd; totalStorage
// bounds how much of the heap+stack region may actually be used, mirroring
// the --storage flag's "not enough memory for requested layout" failure.
func NewMemory(layout *link.Layout, stackSize, totalStorage uint32) (*Memory, error) {
	stackTop := link.AddressSpaceEnd
	stackBottom := stackTop - stackSize
	heapLimit := link.HeapLimit

	if stackBottom <= layout.HeapBase {
		return nil, errNotEnoughMemory("stack of %d bytes collides with the heap base", stackSize)
	}
	if heapLimit > stackBottom {
		heapLimit = stackBottom
	}
	if uint32(heapLimit-layout.HeapBase)+stackSize > totalStorage {
		return nil, errNotEnoughMemory("heap+stack need more than the configured %d bytes of storage", totalStorage)
	}

	m := &Memory{
		text:        layout.Text,
		data:        layout.Data,
		rodata:      layout.Rodata,
		bss:         layout.Bss,
		textBase:    layout.TextBase,
		dataBase:    layout.DataBase,
		rodataBase:  layout.RodataBase,
		bssBase:     layout.BssBase,
		heapBase:    layout.HeapBase,
		heapTop:     layout.HeapBase,
		heapLimit:   heapLimit,
		stack:       make([]byte, stackSize),
		stackBottom: stackBottom,
		stackTop:    stackTop,
		slots:       make([]Executable, len(layout.Text)/4),
	}
	for i := range m.slots {
		m.slots[i] = Executable{Fn: genericDecode}
	}
	return m, nil
}

func errNotEnoughMemory(format string, args ...any) error {
	return makeError(ErrNotEnoughMemory, format, args...)
}

func (m *Memory) isText(addr uint32) bool { return addr >= m.textBase && addr < m.textBase+uint32(len(m.text)) }
func (m *Memory) isData(addr uint32) bool { return addr >= m.dataBase && addr < m.dataBase+uint32(len(m.data)) }
func (m *Memory) isRodata(addr uint32) bool {
	return addr >= m.rodataBase && addr < m.rodataBase+uint32(len(m.rodata))
}
func (m *Memory) isBss(addr uint32) bool { return addr >= m.bssBase && addr < m.bssBase+uint32(len(m.bss)) }
func (m *Memory) isHeap(addr uint32) bool { return addr >= m.heapBase && addr < m.heapTop }
func (m *Memory) isStack(addr uint32) bool { return addr >= m.stackBottom && addr < m.stackTop }

// span returns the writable (or read-only) backing slice for a region
// containing [addr, addr+size), or nil if the access doesn't fit in one.
func (m *Memory) span(addr, size uint32) (data []byte, writable bool, ok bool) {
	end := addr + size
	switch {
	case m.isText(addr) && end <= m.textBase+uint32(len(m.text)):
		off := addr - m.textBase
		return m.text[off : off+size], false, true
	case m.isData(addr) && end <= m.dataBase+uint32(len(m.data)):
		off := addr - m.dataBase
		return m.data[off : off+size], true, true
	case m.isRodata(addr) && end <= m.rodataBase+uint32(len(m.rodata)):
		off := addr - m.rodataBase
		return m.rodata[off : off+size], false, true
	case m.isBss(addr) && end <= m.bssBase+uint32(len(m.bss)):
		off := addr - m.bssBase
		return m.bss[off : off+size], true, true
	case m.isHeap(addr) && end <= m.heapTop:
		off := addr - m.heapBase
		return m.heap[off : off+size], true, true
	case m.isStack(addr) && end <= m.stackTop:
		off := addr - m.stackBottom
		return m.stack[off : off+size], true, true
	default:
		return nil, false, false
	}
}

// Load reads a little-endian size-byte value (size ∈ {1,2,4}) as unsigned.
func (m *Memory) Load(pc, addr, size uint32) (uint32, *Fault) {
	if addr%size != 0 {
		return 0, faultMisaligned(LoadMisAligned, pc, addr, size)
	}
	data, _, ok := m.span(addr, size)
	if !ok {
		return 0, faultOutOfBound(LoadOutOfBound, pc, addr, size)
	}
	var v uint32
	for i := uint32(0); i < size; i++ {
		v |= uint32(data[i]) << (8 * i)
	}
	return v, nil
}

// Store writes the low size bytes of value, little-endian.
func (m *Memory) Store(pc, addr, size, value uint32) *Fault {
	if addr%size != 0 {
		return faultMisaligned(StoreMisAligned, pc, addr, size)
	}
	data, writable, ok := m.span(addr, size)
	if !ok || !writable {
		return faultOutOfBound(StoreOutOfBound, pc, addr, size)
	}
	for i := uint32(0); i < size; i++ {
		data[i] = byte(value >> (8 * i))
	}
	return nil
}

// fetchInstructionWord reads the 4-byte instruction at pc, restricted to
// the text segment (libc addresses are dispatched before this is reached).
func (m *Memory) fetchInstructionWord(pc uint32) (uint32, *Fault) {
	if pc%4 != 0 {
		return 0, faultMisaligned(InsMisAligned, pc, pc, 4)
	}
	if !m.isText(pc) || pc+4 > m.textBase+uint32(len(m.text)) {
		return 0, faultOutOfBound(InsOutOfBound, pc, pc, 4)
	}
	off := pc - m.textBase
	b := m.text[off : off+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (m *Memory) slotIndex(pc uint32) int { return int((pc - m.textBase) / 4) }

func (m *Memory) getSlot(pc uint32) Executable { return m.slots[m.slotIndex(pc)] }
func (m *Memory) setSlot(pc uint32, e Executable) { m.slots[m.slotIndex(pc)] = e }

// Sbrk grows the heap by delta bytes (delta may be negative) and returns
// the frontier address before the move, POSIX-style. Fails if the move
// would collide with the stack.
func (m *Memory) Sbrk(delta int32) (uint32, bool) {
	before := m.heapTop
	next := int64(m.heapTop) + int64(delta)
	if next < int64(m.heapBase) || next > int64(m.heapLimit) || uint32(next) > m.stackBottom {
		return 0, false
	}
	if uint32(next) > uint32(len(m.heap))+m.heapBase {
		grown := make([]byte, uint32(next)-m.heapBase)
		copy(grown, m.heap)
		m.heap = grown
	}
	m.heapTop = uint32(next)
	return before, true
}

// LibcAccess returns the contiguous byte span from addr to the end of
// whatever segment contains it, for libc stubs reading C strings/buffers.
// An invalid address yields an empty span rather than a fault.
func (m *Memory) LibcAccess(addr uint32) []byte {
	switch {
	case m.isData(addr):
		return m.data[addr-m.dataBase:]
	case m.isRodata(addr):
		return m.rodata[addr-m.rodataBase:]
	case m.isBss(addr):
		return m.bss[addr-m.bssBase:]
	case m.isHeap(addr):
		return m.heap[addr-m.heapBase:]
	case m.isStack(addr):
		return m.stack[addr-m.stackBottom:]
	default:
		return nil
	}
}
