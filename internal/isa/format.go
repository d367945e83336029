package isa

// Field positions shared by every RV32 encoding.
const (
	fieldOpcodeBit  = 0
	fieldOpcodeW    = 7
	fieldRdBit      = 7
	fieldRegW       = 5
	fieldFunct3Bit  = 12
	fieldFunct3W    = 3
	fieldRs1Bit     = 15
	fieldRs2Bit     = 20
	fieldFunct7Bit  = 25
	fieldFunct7W    = 7
)

// bitView32 is a read/write window over a 32-bit instruction word, letting
// encode/decode address it by bit range instead of hand-rolled shifts.
type bitView32 struct {
	word *uint32
}

func view(word *uint32) bitView32 {
	return bitView32{word: word}
}

func allOnes32(width int) uint32 {
	return (uint32(1) << uint(width)) - 1
}

// Read extracts a range of bits given a first bit and a width.
func (v bitView32) Read(bit, width int) uint32 {
	return (*v.word >> uint(bit)) & allOnes32(width)
}

// Write ORs a value into a range of bits, given the start and width of the
// range; bits already set in the range are not cleared, so callers write
// into a zeroed word. Bits of value above width are ignored.
func (v bitView32) Write(value uint32, bit, width int) {
	*v.word |= (value & allOnes32(width)) << uint(bit)
}

func opcodeOf(word uint32) uint32 {
	return view(&word).Read(fieldOpcodeBit, fieldOpcodeW)
}

func funct3Of(word uint32) uint32 {
	return view(&word).Read(fieldFunct3Bit, fieldFunct3W)
}

func funct7Of(word uint32) uint32 {
	return view(&word).Read(fieldFunct7Bit, fieldFunct7W)
}

func rdOf(word uint32) Reg {
	return Reg(view(&word).Read(fieldRdBit, fieldRegW))
}

func rs1Of(word uint32) Reg {
	return Reg(view(&word).Read(fieldRs1Bit, fieldRegW))
}

func rs2Of(word uint32) Reg {
	return Reg(view(&word).Read(fieldRs2Bit, fieldRegW))
}

// signExtend sign-extends the low `width` bits of value, treated as a
// two's-complement integer of that width, into an int32.
func signExtend(value uint32, width int) int32 {
	shift := 32 - width
	return int32(value<<shift) >> shift
}

func packBase(opcode, funct3, funct7 uint32, rd, rs1, rs2 Reg) uint32 {
	var word uint32
	v := view(&word)
	v.Write(opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write(uint32(rd), fieldRdBit, fieldRegW)
	v.Write(funct3, fieldFunct3Bit, fieldFunct3W)
	v.Write(uint32(rs1), fieldRs1Bit, fieldRegW)
	v.Write(uint32(rs2), fieldRs2Bit, fieldRegW)
	v.Write(funct7, fieldFunct7Bit, fieldFunct7W)
	return word
}

// --- R-type: funct7 | rs2 | rs1 | funct3 | rd | opcode ---

func encodeR(d desc, rd, rs1, rs2 Reg) uint32 {
	return packBase(d.opcode, d.funct3, d.funct7, rd, rs1, rs2)
}

func decodeR(word uint32) (rd, rs1, rs2 Reg) {
	return rdOf(word), rs1Of(word), rs2Of(word)
}

// --- I-type: imm[11:0] | rs1 | funct3 | rd | opcode ---

func encodeI(d desc, rd, rs1 Reg, imm int32) (uint32, error) {
	if !fitsSigned(imm, 12) {
		return 0, makeError(ErrImmediateOutOfRange, "I-type immediate %d does not fit 12 bits", imm)
	}
	var word uint32
	v := view(&word)
	v.Write(d.opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write(uint32(rd), fieldRdBit, fieldRegW)
	v.Write(d.funct3, fieldFunct3Bit, fieldFunct3W)
	v.Write(uint32(rs1), fieldRs1Bit, fieldRegW)
	v.Write(uint32(imm)&0xfff, 20, 12)
	return word, nil
}

// encodeIShift packs an I-type shift (SLLI/SRLI/SRAI), where the immediate
// slot carries a 5-bit shift amount in bits [4:0] and the funct7
// discriminator in bits [11:5], per spec.md's RV32I shift encoding.
func encodeIShift(d desc, rd, rs1 Reg, shamt uint32) (uint32, error) {
	if shamt >= 32 {
		return 0, makeError(ErrImmediateOutOfRange, "shift amount %d out of range", shamt)
	}
	var word uint32
	v := view(&word)
	v.Write(d.opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write(uint32(rd), fieldRdBit, fieldRegW)
	v.Write(d.funct3, fieldFunct3Bit, fieldFunct3W)
	v.Write(uint32(rs1), fieldRs1Bit, fieldRegW)
	v.Write(shamt, 20, 5)
	v.Write(d.funct7, fieldFunct7Bit, fieldFunct7W)
	return word, nil
}

func decodeI(word uint32) (rd, rs1 Reg, imm int32) {
	raw := view(&word).Read(20, 12)
	return rdOf(word), rs1Of(word), signExtend(raw, 12)
}

func decodeIShift(word uint32) (rd, rs1 Reg, shamt uint32) {
	return rdOf(word), rs1Of(word), view(&word).Read(20, 5)
}

// --- S-type: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode ---

func encodeS(d desc, rs1, rs2 Reg, imm int32) (uint32, error) {
	if !fitsSigned(imm, 12) {
		return 0, makeError(ErrImmediateOutOfRange, "S-type immediate %d does not fit 12 bits", imm)
	}
	u := uint32(imm)
	var word uint32
	v := view(&word)
	v.Write(d.opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write(u&0x1f, 7, 5)
	v.Write(d.funct3, fieldFunct3Bit, fieldFunct3W)
	v.Write(uint32(rs1), fieldRs1Bit, fieldRegW)
	v.Write(uint32(rs2), fieldRs2Bit, fieldRegW)
	v.Write((u>>5)&0x7f, fieldFunct7Bit, fieldFunct7W)
	return word, nil
}

func decodeS(word uint32) (rs1, rs2 Reg, imm int32) {
	v := view(&word)
	low := v.Read(7, 5)
	high := v.Read(fieldFunct7Bit, fieldFunct7W)
	raw := low | (high << 5)
	return rs1Of(word), rs2Of(word), signExtend(raw, 12)
}

// --- B-type: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode ---

func encodeB(d desc, rs1, rs2 Reg, imm int32) (uint32, error) {
	if imm%2 != 0 {
		return 0, makeError(ErrImmediateOutOfRange, "branch offset %d is not 2-byte aligned", imm)
	}
	if !fitsSigned(imm, 13) {
		return 0, makeError(ErrImmediateOutOfRange, "B-type offset %d does not fit 13 bits", imm)
	}
	u := uint32(imm)
	var word uint32
	v := view(&word)
	v.Write(d.opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write((u>>11)&0x1, 7, 1)
	v.Write((u>>1)&0xf, 8, 4)
	v.Write(d.funct3, fieldFunct3Bit, fieldFunct3W)
	v.Write(uint32(rs1), fieldRs1Bit, fieldRegW)
	v.Write(uint32(rs2), fieldRs2Bit, fieldRegW)
	v.Write((u>>5)&0x3f, 25, 6)
	v.Write((u>>12)&0x1, 31, 1)
	return word, nil
}

func decodeB(word uint32) (rs1, rs2 Reg, imm int32) {
	v := view(&word)
	bit11 := v.Read(7, 1)
	bits4_1 := v.Read(8, 4)
	bits10_5 := v.Read(25, 6)
	bit12 := v.Read(31, 1)
	raw := (bit12 << 12) | (bit11 << 11) | (bits10_5 << 5) | (bits4_1 << 1)
	return rs1Of(word), rs2Of(word), signExtend(raw, 13)
}

// --- U-type: imm[31:12] | rd | opcode ---

func encodeU(d desc, rd Reg, imm int32) (uint32, error) {
	if uint32(imm)&0xfff != 0 {
		return 0, makeError(ErrImmediateOutOfRange, "U-type immediate %#x has set low 12 bits", uint32(imm))
	}
	var word uint32
	v := view(&word)
	v.Write(d.opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write(uint32(rd), fieldRdBit, fieldRegW)
	v.Write(uint32(imm)>>12, 12, 20)
	return word, nil
}

func decodeU(word uint32) (rd Reg, imm int32) {
	raw := view(&word).Read(12, 20)
	return rdOf(word), int32(raw << 12)
}

// --- J-type: imm[20|10:1|11|19:12] | rd | opcode ---

func encodeJ(d desc, rd Reg, imm int32) (uint32, error) {
	if imm%2 != 0 {
		return 0, makeError(ErrImmediateOutOfRange, "jump offset %d is not 2-byte aligned", imm)
	}
	if !fitsSigned(imm, 21) {
		return 0, makeError(ErrImmediateOutOfRange, "J-type offset %d does not fit 21 bits", imm)
	}
	u := uint32(imm)
	var word uint32
	v := view(&word)
	v.Write(d.opcode, fieldOpcodeBit, fieldOpcodeW)
	v.Write(uint32(rd), fieldRdBit, fieldRegW)
	v.Write((u>>12)&0xff, 12, 8)
	v.Write((u>>11)&0x1, 20, 1)
	v.Write((u>>1)&0x3ff, 21, 10)
	v.Write((u>>20)&0x1, 31, 1)
	return word, nil
}

func decodeJ(word uint32) (rd Reg, imm int32) {
	v := view(&word)
	bits19_12 := v.Read(12, 8)
	bit11 := v.Read(20, 1)
	bits10_1 := v.Read(21, 10)
	bit20 := v.Read(31, 1)
	raw := (bit20 << 20) | (bits19_12 << 12) | (bit11 << 11) | (bits10_1 << 1)
	return rdOf(word), signExtend(raw, 21)
}

// fitsSigned reports whether value fits in a two's-complement integer of
// the given bit width.
func fitsSigned(value int32, width int) bool {
	lo := int32(-1) << (width - 1)
	hi := -lo - 1
	return value >= lo && value <= hi
}
