package vm

import "github.com/dark-riscv/rvsim/internal/isa"

// handlerTable maps each supported Op to its specialized handler. Looked
// up exactly once, at decode time, by genericDecode — every handler below
// is branch-free over opcode, matching spec.md §9's dispatch contract.
var handlerTable = map[isa.Op]handlerFn{
	isa.OpAdd:  regReg(func(a, b uint32) uint32 { return a + b }),
	isa.OpSub:  regReg(func(a, b uint32) uint32 { return a - b }),
	isa.OpSll:  regReg(func(a, b uint32) uint32 { return a << (b & 0x1f) }),
	isa.OpSlt:  regReg(func(a, b uint32) uint32 { return boolU32(int32(a) < int32(b)) }),
	isa.OpSltu: regReg(func(a, b uint32) uint32 { return boolU32(a < b) }),
	isa.OpXor:  regReg(func(a, b uint32) uint32 { return a ^ b }),
	isa.OpSrl:  regReg(func(a, b uint32) uint32 { return a >> (b & 0x1f) }),
	isa.OpSra:  regReg(func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 0x1f)) }),
	isa.OpOr:   regReg(func(a, b uint32) uint32 { return a | b }),
	isa.OpAnd:  regReg(func(a, b uint32) uint32 { return a & b }),

	isa.OpMul:    regReg(func(a, b uint32) uint32 { return a * b }),
	isa.OpMulh:   regReg(mulh),
	isa.OpMulhsu: regReg(mulhsu),
	isa.OpMulhu:  regReg(mulhu),
	isa.OpDiv:    divRemSigned(opDiv),
	isa.OpDivu:   divRemUnsigned(opDivu),
	isa.OpRem:    divRemSigned(opRem),
	isa.OpRemu:   divRemUnsigned(opRemu),

	isa.OpAddi:  regImm(func(a uint32, imm int32) uint32 { return a + uint32(imm) }),
	isa.OpSlti:  regImm(func(a uint32, imm int32) uint32 { return boolU32(int32(a) < imm) }),
	isa.OpSltiu: regImm(func(a uint32, imm int32) uint32 { return boolU32(a < uint32(imm)) }),
	isa.OpXori:  regImm(func(a uint32, imm int32) uint32 { return a ^ uint32(imm) }),
	isa.OpOri:   regImm(func(a uint32, imm int32) uint32 { return a | uint32(imm) }),
	isa.OpAndi:  regImm(func(a uint32, imm int32) uint32 { return a & uint32(imm) }),
	isa.OpSlli:  regImm(func(a uint32, imm int32) uint32 { return a << (uint32(imm) & 0x1f) }),
	isa.OpSrli:  regImm(func(a uint32, imm int32) uint32 { return a >> (uint32(imm) & 0x1f) }),
	isa.OpSrai:  regImm(func(a uint32, imm int32) uint32 { return uint32(int32(a) >> (uint32(imm) & 0x1f)) }),

	isa.OpLb:  load(1, true),
	isa.OpLh:  load(2, true),
	isa.OpLw:  load(4, true),
	isa.OpLbu: load(1, false),
	isa.OpLhu: load(2, false),

	isa.OpSb: store(1),
	isa.OpSh: store(2),
	isa.OpSw: store(4),

	isa.OpBeq:  branch(func(a, b int32) bool { return a == b }),
	isa.OpBne:  branch(func(a, b int32) bool { return a != b }),
	isa.OpBlt:  branch(func(a, b int32) bool { return a < b }),
	isa.OpBge:  branch(func(a, b int32) bool { return a >= b }),
	isa.OpBltu: branchU(func(a, b uint32) bool { return a < b }),
	isa.OpBgeu: branchU(func(a, b uint32) bool { return a >= b }),

	isa.OpJal:   hJal,
	isa.OpJalr:  hJalr,
	isa.OpLui:   hLui,
	isa.OpAuipc: hAuipc,
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func regReg(f func(a, b uint32) uint32) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		rd, rs1, rs2, _ := unpackOperands(operands)
		m.Registers.Set(rd, f(m.Registers.Get(rs1), m.Registers.Get(rs2)))
		m.Registers.PC += 4
		return nil
	}
}

func regImm(f func(a uint32, imm int32) uint32) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		rd, rs1, _, imm := unpackOperands(operands)
		m.Registers.Set(rd, f(m.Registers.Get(rs1), imm))
		m.Registers.PC += 4
		return nil
	}
}

func mulh(a, b uint32) uint32 {
	return uint32((int64(int32(a)) * int64(int32(b))) >> 32)
}

func mulhsu(a, b uint32) uint32 {
	return uint32((int64(int32(a)) * int64(uint64(b))) >> 32)
}

func mulhu(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

func opDiv(a, b int32) int32 {
	if b == -1 {
		return -a // avoid the MinInt32/-1 overflow case misbehaving
	}
	return a / b
}
func opDivu(a, b uint32) uint32 { return a / b }
func opRem(a, b int32) int32 {
	if b == -1 {
		return 0
	}
	return a % b
}
func opRemu(a, b uint32) uint32 { return a % b }

func divRemSigned(f func(a, b int32) int32) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		rd, rs1, rs2, _ := unpackOperands(operands)
		b := m.Registers.Get(rs2)
		if b == 0 {
			return &Fault{Kind: DivideByZero, PC: m.Registers.PC}
		}
		m.Registers.Set(rd, uint32(f(int32(m.Registers.Get(rs1)), int32(b))))
		m.Registers.PC += 4
		return nil
	}
}

func divRemUnsigned(f func(a, b uint32) uint32) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		rd, rs1, rs2, _ := unpackOperands(operands)
		b := m.Registers.Get(rs2)
		if b == 0 {
			return &Fault{Kind: DivideByZero, PC: m.Registers.PC}
		}
		m.Registers.Set(rd, f(m.Registers.Get(rs1), b))
		m.Registers.PC += 4
		return nil
	}
}

func load(size uint32, signExtend bool) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		rd, rs1, _, imm := unpackOperands(operands)
		addr := m.Registers.Get(rs1) + uint32(imm)
		v, fault := m.Memory.Load(m.Registers.PC, addr, size)
		if fault != nil {
			return fault
		}
		if signExtend {
			shift := 32 - size*8
			v = uint32(int32(v<<shift) >> shift)
		}
		m.Registers.Set(rd, v)
		m.Registers.PC += 4
		return nil
	}
}

func store(size uint32) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		_, rs1, rs2, imm := unpackOperands(operands)
		addr := m.Registers.Get(rs1) + uint32(imm)
		if fault := m.Memory.Store(m.Registers.PC, addr, size, m.Registers.Get(rs2)); fault != nil {
			return fault
		}
		m.Registers.PC += 4
		return nil
	}
}

func branch(f func(a, b int32) bool) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		_, rs1, rs2, imm := unpackOperands(operands)
		taken := f(int32(m.Registers.Get(rs1)), int32(m.Registers.Get(rs2)))
		return takeBranch(m, taken, imm)
	}
}

func branchU(f func(a, b uint32) bool) handlerFn {
	return func(m *Machine, operands uint64) *Fault {
		_, rs1, rs2, imm := unpackOperands(operands)
		taken := f(m.Registers.Get(rs1), m.Registers.Get(rs2))
		return takeBranch(m, taken, imm)
	}
}

func takeBranch(m *Machine, taken bool, imm int32) *Fault {
	pc := m.Registers.PC
	m.Device.Predict(pc, taken)
	if taken {
		m.Registers.PC = uint32(int32(pc) + imm)
	} else {
		m.Registers.PC = pc + 4
	}
	return nil
}

func hJal(m *Machine, operands uint64) *Fault {
	rd, _, _, imm := unpackOperands(operands)
	pc := m.Registers.PC
	m.Registers.Set(rd, pc+4)
	m.Registers.PC = uint32(int32(pc) + imm)
	return nil
}

func hJalr(m *Machine, operands uint64) *Fault {
	rd, rs1, _, imm := unpackOperands(operands)
	pc := m.Registers.PC
	target := (m.Registers.Get(rs1) + uint32(imm)) &^ 1
	m.Registers.Set(rd, pc+4)
	m.Registers.PC = target
	return nil
}

func hLui(m *Machine, operands uint64) *Fault {
	rd, _, _, imm := unpackOperands(operands)
	m.Registers.Set(rd, uint32(imm))
	m.Registers.PC += 4
	return nil
}

func hAuipc(m *Machine, operands uint64) *Fault {
	rd, _, _, imm := unpackOperands(operands)
	m.Registers.Set(rd, m.Registers.PC+uint32(imm))
	m.Registers.PC += 4
	return nil
}
