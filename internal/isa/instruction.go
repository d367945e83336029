package isa

// Decoded is a fully typed RV32IM instruction: the operation plus whichever
// operand fields its format carries. Fields unused by Op's format are left
// at their zero value.
type Decoded struct {
	Op  Op
	Rd  Reg
	Rs1 Reg
	Rs2 Reg
	// Imm carries the sign-extended immediate for I/S/B/U/J formats, and
	// the (always non-negative) shift amount for SLLI/SRLI/SRAI.
	Imm int32
}

// Decode translates a raw instruction word into its typed form. It is the
// single path by which "illegal instruction" is detected: any opcode,
// funct3 or funct7 combination not present in descs yields
// ErrUnknownInstruction.
func Decode(word uint32) (Decoded, error) {
	opcode := opcodeOf(word)
	funct3 := funct3Of(word)

	switch opcode {
	case opcodeOpReg:
		funct7 := funct7Of(word)
		op, ok := lookupR(opcode, funct3, funct7)
		if !ok {
			return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b funct3=%#05b funct7=%#09b", opcode, funct3, funct7)
		}
		rd, rs1, rs2 := decodeR(word)
		return Decoded{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}, nil

	case opcodeOpImm:
		if funct3 == 0b001 || funct3 == 0b101 {
			if op, ok := lookupIShift(opcode, funct3, funct7Of(word)); ok {
				rd, rs1, shamt := decodeIShift(word)
				return Decoded{Op: op, Rd: rd, Rs1: rs1, Imm: int32(shamt)}, nil
			}
		}
		op, ok := lookupI(opcode, funct3)
		if !ok {
			return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b funct3=%#05b", opcode, funct3)
		}
		rd, rs1, imm := decodeI(word)
		return Decoded{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil

	case opcodeLoad:
		op, ok := lookupI(opcode, funct3)
		if !ok {
			return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b funct3=%#05b", opcode, funct3)
		}
		rd, rs1, imm := decodeI(word)
		return Decoded{Op: op, Rd: rd, Rs1: rs1, Imm: imm}, nil

	case opcodeJalr:
		if funct3 != 0 {
			return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b funct3=%#05b", opcode, funct3)
		}
		rd, rs1, imm := decodeI(word)
		return Decoded{Op: OpJalr, Rd: rd, Rs1: rs1, Imm: imm}, nil

	case opcodeStore:
		op, ok := lookupS(opcode, funct3)
		if !ok {
			return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b funct3=%#05b", opcode, funct3)
		}
		rs1, rs2, imm := decodeS(word)
		return Decoded{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm}, nil

	case opcodeBranch:
		op, ok := lookupB(opcode, funct3)
		if !ok {
			return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b funct3=%#05b", opcode, funct3)
		}
		rs1, rs2, imm := decodeB(word)
		return Decoded{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm}, nil

	case opcodeJal:
		rd, imm := decodeJ(word)
		return Decoded{Op: OpJal, Rd: rd, Imm: imm}, nil

	case opcodeLui:
		rd, imm := decodeU(word)
		return Decoded{Op: OpLui, Rd: rd, Imm: imm}, nil

	case opcodeAuipc:
		rd, imm := decodeU(word)
		return Decoded{Op: OpAuipc, Rd: rd, Imm: imm}, nil

	default:
		return Decoded{}, makeError(ErrUnknownInstruction, "opcode=%#09b", opcode)
	}
}

// Encode packs a Decoded instruction back into its 32-bit word. For every
// word produced by Decode, Encode(Decode(word)) reproduces word exactly.
func Encode(in Decoded) (uint32, error) {
	d, ok := descs[in.Op]
	if !ok {
		return 0, makeError(ErrUnknownMnemonic, "op %v has no encoding descriptor", in.Op)
	}

	switch d.format {
	case FormatR:
		return encodeR(d, in.Rd, in.Rs1, in.Rs2), nil
	case FormatI:
		if d.isShift {
			return encodeIShift(d, in.Rd, in.Rs1, uint32(in.Imm))
		}
		return encodeI(d, in.Rd, in.Rs1, in.Imm)
	case FormatS:
		return encodeS(d, in.Rs1, in.Rs2, in.Imm)
	case FormatB:
		return encodeB(d, in.Rs1, in.Rs2, in.Imm)
	case FormatU:
		return encodeU(d, in.Rd, in.Imm)
	case FormatJ:
		return encodeJ(d, in.Rd, in.Imm)
	default:
		return 0, makeError(ErrUnknownMnemonic, "op %v has unknown format", in.Op)
	}
}

// key packs the three discriminator fields decode ever needs to branch on
// into one comparable value, so the reverse lookup tables below are plain
// maps built once at init instead of a linear scan per instruction fetch.
type key struct {
	opcode, funct3, funct7 uint32
}

var (
	rTable      map[key]Op
	iShiftTable map[key]Op
	iTable      map[key]Op
	sTable      map[key]Op
	bTable      map[key]Op
)

func init() {
	rTable = make(map[key]Op)
	iShiftTable = make(map[key]Op)
	iTable = make(map[key]Op)
	sTable = make(map[key]Op)
	bTable = make(map[key]Op)

	for op, d := range descs {
		switch d.format {
		case FormatR:
			rTable[key{d.opcode, d.funct3, d.funct7}] = op
		case FormatI:
			if d.isShift {
				iShiftTable[key{d.opcode, d.funct3, d.funct7}] = op
			} else {
				iTable[key{d.opcode, d.funct3, 0}] = op
			}
		case FormatS:
			sTable[key{d.opcode, d.funct3, 0}] = op
		case FormatB:
			bTable[key{d.opcode, d.funct3, 0}] = op
		}
	}
}

func lookupR(opcode, funct3, funct7 uint32) (Op, bool) {
	op, ok := rTable[key{opcode, funct3, funct7}]
	return op, ok
}

func lookupIShift(opcode, funct3, funct7 uint32) (Op, bool) {
	op, ok := iShiftTable[key{opcode, funct3, funct7}]
	return op, ok
}

func lookupI(opcode, funct3 uint32) (Op, bool) {
	op, ok := iTable[key{opcode, funct3, 0}]
	return op, ok
}

func lookupS(opcode, funct3 uint32) (Op, bool) {
	op, ok := sTable[key{opcode, funct3, 0}]
	return op, ok
}

func lookupB(opcode, funct3 uint32) (Op, bool) {
	op, ok := bTable[key{opcode, funct3, 0}]
	return op, ok
}
