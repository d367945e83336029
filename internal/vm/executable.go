package vm

import "github.com/dark-riscv/rvsim/internal/isa"

// handlerFn is a specialized, opcode-bound handler: branch-free over
// opcode, since the dispatch already happened once at decode time. It
// reads its packed operands from the word genericDecode prepared, performs
// the instruction's effect, and is responsible for advancing pc itself
// (straight-line ops go +4; branch/jump handlers set it directly).
type handlerFn func(m *Machine, operands uint64) *Fault

// Executable is one decode-cache slot: a handler plus its packed operand
// word, matching spec.md §4.4's `(function pointer, packed operand word)`
// pair and original_source/include/simulation/executable.h's Executable.
type Executable struct {
	Fn       handlerFn
	Operands uint64
	Op       isa.Op // valid once Decoded; used to count executions per opcode
	Decoded  bool
}

// packOperands packs a register triple plus a 32-bit immediate into one
// machine word: rd[4:0] rs1[9:5] rs2[14:10] imm[46:15]. Every handler
// family fits comfortably, so no shape needs a second word.
func packOperands(rd, rs1, rs2 isa.Reg, imm int32) uint64 {
	return uint64(rd) | uint64(rs1)<<5 | uint64(rs2)<<10 | uint64(uint32(imm))<<15
}

func unpackOperands(word uint64) (rd, rs1, rs2 isa.Reg, imm int32) {
	rd = isa.Reg(word & 0x1f)
	rs1 = isa.Reg((word >> 5) & 0x1f)
	rs2 = isa.Reg((word >> 10) & 0x1f)
	imm = int32(uint32(word >> 15))
	return
}

// genericDecode is the initial handler installed in every text slot. It
// decodes the word at pc exactly once, overwrites its own slot with the
// specialized handler and packed operands, then tail-invokes it — so
// iparse increments, and a real decode happens, at most once per address.
func genericDecode(m *Machine, _ uint64) *Fault {
	pc := m.Registers.PC
	word, fault := m.Memory.fetchInstructionWord(pc)
	if fault != nil {
		return fault
	}

	m.Device.IParse++

	decoded, err := isa.Decode(word)
	if err != nil {
		return &Fault{Kind: InsUnknown, PC: pc, Message: err.Error()}
	}

	fn, ok := handlerTable[decoded.Op]
	if !ok {
		return &Fault{Kind: InsUnknown, PC: pc, Message: decoded.Op.String()}
	}

	operands := packOperands(decoded.Rd, decoded.Rs1, decoded.Rs2, decoded.Imm)
	slot := Executable{Fn: fn, Operands: operands, Op: decoded.Op, Decoded: true}
	m.Memory.setSlot(pc, slot)

	m.Device.count(decoded.Op)
	return fn(m, operands)
}
