package asm

import (
	"github.com/dark-riscv/rvsim/internal/isa"
)

var loadOps = map[string]isa.Op{
	"lb": isa.OpLb, "lh": isa.OpLh, "lw": isa.OpLw, "lbu": isa.OpLbu, "lhu": isa.OpLhu,
}

var storeOps = map[string]isa.Op{
	"sb": isa.OpSb, "sh": isa.OpSh, "sw": isa.OpSw,
}

var arithRegOps = map[string]isa.Op{
	"add": isa.OpAdd, "sub": isa.OpSub, "and": isa.OpAnd, "or": isa.OpOr, "xor": isa.OpXor,
	"sll": isa.OpSll, "srl": isa.OpSrl, "sra": isa.OpSra, "slt": isa.OpSlt, "sltu": isa.OpSltu,
	"mul": isa.OpMul, "mulh": isa.OpMulh, "mulhu": isa.OpMulhu, "mulhsu": isa.OpMulhsu,
	"div": isa.OpDiv, "divu": isa.OpDivu, "rem": isa.OpRem, "remu": isa.OpRemu,
}

var arithImmOps = map[string]isa.Op{
	"addi": isa.OpAddi, "andi": isa.OpAndi, "ori": isa.OpOri, "xori": isa.OpXori,
	"slli": isa.OpSlli, "srli": isa.OpSrli, "srai": isa.OpSrai,
	"slti": isa.OpSlti, "sltiu": isa.OpSltiu,
}

var branchOps = map[string]isa.Op{
	"beq": isa.OpBeq, "bne": isa.OpBne, "blt": isa.OpBlt, "bge": isa.OpBge,
	"bltu": isa.OpBltu, "bgeu": isa.OpBgeu,
}

// swappedBranchOps are pseudo-comparisons expressed by swapping the real
// branch's operands ("ble a,b,L" == "bge b,a,L"), per original_source.
var swappedBranchOps = map[string]isa.Op{
	"ble": isa.OpBge, "bleu": isa.OpBgeu, "bgt": isa.OpBlt, "bgtu": isa.OpBltu,
}

// buildMnemonic parses one non-directive, non-label line into the items it
// expands to: exactly one for nearly every real instruction, one Pseudo for
// call/tail/la (resolved at link time), and either one or two real
// Instructions for li (expanded eagerly since its operand is always a
// compile-time constant).
func buildMnemonic(mnemonic string, operands []string) ([]Item, error) {
	if op, ok := arithRegOps[mnemonic]; ok {
		return oneItem(buildArithReg(op, operands))
	}
	if op, ok := arithImmOps[mnemonic]; ok {
		return oneItem(buildArithImm(op, operands))
	}
	if op, ok := loadOps[mnemonic]; ok {
		return oneItem(buildLoad(op, operands))
	}
	if op, ok := storeOps[mnemonic]; ok {
		return oneItem(buildStore(op, operands))
	}
	if op, ok := branchOps[mnemonic]; ok {
		return oneItem(buildBranch(op, operands, false))
	}
	if op, ok := swappedBranchOps[mnemonic]; ok {
		return oneItem(buildBranch(op, operands, true))
	}

	switch mnemonic {
	case "jal":
		return oneItem(buildJal(operands))
	case "jalr":
		return oneItem(buildJalr(operands))
	case "lui":
		return oneItem(buildUpper(isa.OpLui, operands))
	case "auipc":
		return oneItem(buildUpper(isa.OpAuipc, operands))

	case "mv":
		return oneItem(buildMv(operands))
	case "neg":
		return oneItem(buildNeg(operands))
	case "not":
		return oneItem(buildNot(operands))
	case "seqz":
		return oneItem(buildSeqz(operands))
	case "snez":
		return oneItem(buildSnez(operands))
	case "sgtz":
		return oneItem(buildSgtz(operands))
	case "sltz":
		return oneItem(buildSltz(operands))

	case "beqz", "bnez", "bltz", "bgtz", "blez", "bgez":
		return oneItem(buildBrz(mnemonic, operands))

	case "j":
		return oneItem(buildJ(operands))
	case "jr":
		return oneItem(buildJr(operands))
	case "ret":
		return oneItem(buildRet(operands))

	case "call":
		return onePseudo(PseudoCall, operands)
	case "tail":
		return onePseudo(PseudoTail, operands)
	case "la":
		return onePseudo(PseudoLa, operands)

	case "li":
		return buildLi(operands)
	}

	return nil, makeError(ErrUnknownMnemonic, "%q", mnemonic)
}

func oneItem(it Item, err error) ([]Item, error) {
	if err != nil {
		return nil, err
	}
	return []Item{it}, nil
}

func onePseudo(kind PseudoKind, operands []string) ([]Item, error) {
	switch kind {
	case PseudoLa:
		if len(operands) != 2 {
			return nil, makeError(ErrMalformedOperands, "la expects rd, symbol")
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return nil, err
		}
		return []Item{&Pseudo{Kind: kind, Rd: rd, Symbol: operands[1]}}, nil
	default: // call/tail
		if len(operands) != 1 {
			return nil, makeError(ErrMalformedOperands, "call/tail expects a single target")
		}
		return []Item{&Pseudo{Kind: kind, Symbol: operands[0]}}, nil
	}
}

func want(operands []string, n int) error {
	if len(operands) != n {
		return makeError(ErrMalformedOperands, "expected %d operand(s), got %d", n, len(operands))
	}
	return nil
}

func buildArithReg(op isa.Op, operands []string) (Item, error) {
	if err := want(operands, 3); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	rs2, err := parseReg(operands[2])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil
}

func buildArithImm(op isa.Op, operands []string) (Item, error) {
	if err := want(operands, 3); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	imm, err := parseIntLiteral(operands[2])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil
}

func buildLoad(op isa.Op, operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	offsetTok, regTok, ok := splitOffsetRegister(operands[1])
	if !ok {
		return nil, makeError(ErrMalformedOperands, "expected offset(reg), got %q", operands[1])
	}
	rs1, err := parseReg(regTok)
	if err != nil {
		return nil, err
	}
	imm, err := parseIntLiteral(offsetTok)
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil
}

func buildStore(op isa.Op, operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rs2, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	offsetTok, regTok, ok := splitOffsetRegister(operands[1])
	if !ok {
		return nil, makeError(ErrMalformedOperands, "expected offset(reg), got %q", operands[1])
	}
	rs1, err := parseReg(regTok)
	if err != nil {
		return nil, err
	}
	imm, err := parseIntLiteral(offsetTok)
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: int32(imm)}, nil
}

func buildBranch(op isa.Op, operands []string, swap bool) (Item, error) {
	if err := want(operands, 3); err != nil {
		return nil, err
	}
	rs1tok, rs2tok := operands[0], operands[1]
	if swap {
		rs1tok, rs2tok = rs2tok, rs1tok
	}
	rs1, err := parseReg(rs1tok)
	if err != nil {
		return nil, err
	}
	rs2, err := parseReg(rs2tok)
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Rs1: rs1, Rs2: rs2, Symbol: operands[2], PCRelative: true}, nil
}

func buildJal(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpJal, Rd: rd, Symbol: operands[1], PCRelative: true}, nil
}

func buildJalr(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	offsetTok, regTok, ok := splitOffsetRegister(operands[1])
	if !ok {
		return nil, makeError(ErrMalformedOperands, "expected offset(reg), got %q", operands[1])
	}
	rs1, err := parseReg(regTok)
	if err != nil {
		return nil, err
	}
	imm, err := parseIntLiteral(offsetTok)
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpJalr, Rd: rd, Rs1: rs1, Imm: int32(imm)}, nil
}

func buildUpper(op isa.Op, operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	imm, err := parseIntLiteral(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: op, Rd: rd, Imm: int32(imm) << 12}, nil
}

func buildMv(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpAdd, Rd: rd, Rs1: rs1, Rs2: isa.Reg(0)}, nil
}

func buildNeg(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpSub, Rd: rd, Rs1: isa.Reg(0), Rs2: rs1}, nil
}

func buildNot(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpXori, Rd: rd, Rs1: rs1, Imm: -1}, nil
}

func buildSeqz(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpSltiu, Rd: rd, Rs1: rs1, Imm: 1}, nil
}

func buildSnez(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpSltu, Rd: rd, Rs1: isa.Reg(0), Rs2: rs1}, nil
}

func buildSgtz(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpSlt, Rd: rd, Rs1: isa.Reg(0), Rs2: rs1}, nil
}

func buildSltz(operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[1])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpSlt, Rd: rd, Rs1: rs1, Rs2: isa.Reg(0)}, nil
}

func buildBrz(mnemonic string, operands []string) (Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	label := operands[1]
	zero := isa.Reg(0)
	switch mnemonic {
	case "beqz":
		return &Instruction{Op: isa.OpBeq, Rs1: rs1, Rs2: zero, Symbol: label, PCRelative: true}, nil
	case "bnez":
		return &Instruction{Op: isa.OpBne, Rs1: rs1, Rs2: zero, Symbol: label, PCRelative: true}, nil
	case "bltz":
		return &Instruction{Op: isa.OpBlt, Rs1: rs1, Rs2: zero, Symbol: label, PCRelative: true}, nil
	case "bgtz":
		return &Instruction{Op: isa.OpBlt, Rs1: zero, Rs2: rs1, Symbol: label, PCRelative: true}, nil
	case "blez":
		return &Instruction{Op: isa.OpBge, Rs1: zero, Rs2: rs1, Symbol: label, PCRelative: true}, nil
	case "bgez":
		return &Instruction{Op: isa.OpBge, Rs1: rs1, Rs2: zero, Symbol: label, PCRelative: true}, nil
	default:
		return nil, makeError(ErrUnknownMnemonic, "%q", mnemonic)
	}
}

func buildJ(operands []string) (Item, error) {
	if err := want(operands, 1); err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpJal, Rd: isa.Reg(0), Symbol: operands[0], PCRelative: true}, nil
}

func buildJr(operands []string) (Item, error) {
	if err := want(operands, 1); err != nil {
		return nil, err
	}
	rs1, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	return &Instruction{Op: isa.OpJalr, Rd: isa.Reg(0), Rs1: rs1}, nil
}

func buildRet(operands []string) (Item, error) {
	if err := want(operands, 0); err != nil {
		return nil, err
	}
	ra, _ := isa.ParseReg("ra")
	return &Instruction{Op: isa.OpJalr, Rd: isa.Reg(0), Rs1: ra}, nil
}

// buildLi expands "li rd, imm" eagerly since its operand is always a
// compile-time literal: a single addi when the value fits 12 signed bits,
// else the standard lui+addi pair with the +0x800 rounding bias so the
// addi's own sign extension reconstructs the exact 32-bit value.
func buildLi(operands []string) ([]Item, error) {
	if err := want(operands, 2); err != nil {
		return nil, err
	}
	rd, err := parseReg(operands[0])
	if err != nil {
		return nil, err
	}
	value, err := parseIntLiteral(operands[1])
	if err != nil {
		return nil, makeError(ErrInvalidLiteral, "li requires a literal constant, got %q", operands[1])
	}
	v := int32(value)

	if v >= -2048 && v <= 2047 {
		return []Item{&Instruction{Op: isa.OpAddi, Rd: rd, Rs1: isa.Reg(0), Imm: v}}, nil
	}

	upper := (uint32(v) + 0x800) & 0xfffff000
	lower := int32(uint32(v) - upper)
	return []Item{
		&Instruction{Op: isa.OpLui, Rd: rd, Imm: int32(upper)},
		&Instruction{Op: isa.OpAddi, Rd: rd, Rs1: rd, Imm: lower},
	}, nil
}
