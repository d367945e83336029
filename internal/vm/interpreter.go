package vm

import (
	"github.com/dark-riscv/rvsim/internal/isa"
	"github.com/dark-riscv/rvsim/internal/libc"
	"github.com/dark-riscv/rvsim/internal/link"
)

// EndPC is the sentinel return address every run starts with in ra: when
// pc reaches it, the program has returned from main and the interpreter
// halts. Resolves spec.md §9 Open Question (i) exactly as the spec fixes
// it (end_pc = 0x0, not 0x2 or config.storage_size).
const EndPC uint32 = 0x0

// Machine owns one interpreter session's entire state: registers, memory,
// and the device (I/O + counters + predictor). A single fetch-decode-
// execute loop drives it; nothing outside Run mutates it concurrently,
// matching spec.md §5's single-threaded contract.
type Machine struct {
	Registers Registers
	Memory    *Memory
	Device    *Device
}

// NewMachine wires a linked Layout into a runnable Machine: ra is seeded
// with EndPC so falling off the end of main halts the loop, sp with the
// stack top, and pc with the linker's resolved entry point.
func NewMachine(layout *link.Layout, stackSize, totalStorage uint32, device *Device) (*Machine, error) {
	mem, err := NewMemory(layout, stackSize, totalStorage)
	if err != nil {
		return nil, err
	}
	m := &Machine{Memory: mem, Device: device}
	m.Registers.PC = layout.EntryPC
	m.Registers.Set(isa.Reg(1), EndPC)         // ra
	m.Registers.Set(isa.Reg(2), link.AddressSpaceEnd) // sp
	return m, nil
}

// Run drives the loop until halt, a timeout, or a fault. maxIterations <= 0
// means unbounded. Returns a0's value on a clean halt.
func (m *Machine) Run(maxIterations int64) (uint32, error) {
	var iterations int64
	for {
		if m.Registers.PC == EndPC {
			return m.Registers.Get(isa.Reg(10)), nil // a0
		}

		if libc.Base <= m.Registers.PC && m.Registers.PC < libc.End {
			if err := m.dispatchLibc(); err != nil {
				return 0, err
			}
			continue
		}

		if maxIterations > 0 && iterations >= maxIterations {
			return 0, &Fault{Kind: TimeLimitExceeded, PC: m.Registers.PC}
		}
		iterations++

		if fault := m.Step(); fault != nil {
			return 0, fault
		}
	}
}

// Step executes exactly one text-segment instruction, counting it whether
// it hit the decode cache or not.
func (m *Machine) Step() *Fault {
	pc := m.Registers.PC
	if pc%4 != 0 {
		return faultMisaligned(InsMisAligned, pc, pc, 4)
	}
	if !m.Memory.isText(pc) {
		return faultOutOfBound(InsOutOfBound, pc, pc, 4)
	}

	slot := m.Memory.getSlot(pc)
	if slot.Decoded {
		// genericDecode counts its own first execution; every cached
		// hit after that is counted here instead.
		m.Device.count(slot.Op)
	}
	return slot.Fn(m, slot.Operands)
}
