package isa

// Format identifies one of the six RV32I/M instruction encodings.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Op names every RV32IM mnemonic the decoder/encoder supports.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpJal
	OpJalr
	OpLui
	OpAuipc
)

// desc is the static encoding descriptor for one Op: the 7-bit opcode field
// and the funct3/funct7 discriminators (where the format doesn't carry
// them, they are left at zero and simply unused by Encode/Decode).
type desc struct {
	name     string
	format   Format
	opcode   uint32
	funct3   uint32
	funct7   uint32
	isShift  bool // I-format shift (SLLI/SRLI/SRAI): funct7 lives in imm[11:5]
	hasFunct7 bool
}

// Opcode field values, standard RV32I/M base encoding.
const (
	opcodeOpReg   = 0b0110011
	opcodeOpImm   = 0b0010011
	opcodeLoad    = 0b0000011
	opcodeStore   = 0b0100011
	opcodeBranch  = 0b1100011
	opcodeJal     = 0b1101111
	opcodeJalr    = 0b1100111
	opcodeLui     = 0b0110111
	opcodeAuipc   = 0b0010111
)

var descs = map[Op]desc{
	OpAdd:    {"add", FormatR, opcodeOpReg, 0b000, 0b0000000, false, true},
	OpSub:    {"sub", FormatR, opcodeOpReg, 0b000, 0b0100000, false, true},
	OpSll:    {"sll", FormatR, opcodeOpReg, 0b001, 0b0000000, false, true},
	OpSlt:    {"slt", FormatR, opcodeOpReg, 0b010, 0b0000000, false, true},
	OpSltu:   {"sltu", FormatR, opcodeOpReg, 0b011, 0b0000000, false, true},
	OpXor:    {"xor", FormatR, opcodeOpReg, 0b100, 0b0000000, false, true},
	OpSrl:    {"srl", FormatR, opcodeOpReg, 0b101, 0b0000000, false, true},
	OpSra:    {"sra", FormatR, opcodeOpReg, 0b101, 0b0100000, false, true},
	OpOr:     {"or", FormatR, opcodeOpReg, 0b110, 0b0000000, false, true},
	OpAnd:    {"and", FormatR, opcodeOpReg, 0b111, 0b0000000, false, true},

	OpMul:    {"mul", FormatR, opcodeOpReg, 0b000, 0b0000001, false, true},
	OpMulh:   {"mulh", FormatR, opcodeOpReg, 0b001, 0b0000001, false, true},
	OpMulhsu: {"mulhsu", FormatR, opcodeOpReg, 0b010, 0b0000001, false, true},
	OpMulhu:  {"mulhu", FormatR, opcodeOpReg, 0b011, 0b0000001, false, true},
	OpDiv:    {"div", FormatR, opcodeOpReg, 0b100, 0b0000001, false, true},
	OpDivu:   {"divu", FormatR, opcodeOpReg, 0b101, 0b0000001, false, true},
	OpRem:    {"rem", FormatR, opcodeOpReg, 0b110, 0b0000001, false, true},
	OpRemu:   {"remu", FormatR, opcodeOpReg, 0b111, 0b0000001, false, true},

	OpAddi:  {"addi", FormatI, opcodeOpImm, 0b000, 0, false, false},
	OpSlti:  {"slti", FormatI, opcodeOpImm, 0b010, 0, false, false},
	OpSltiu: {"sltiu", FormatI, opcodeOpImm, 0b011, 0, false, false},
	OpXori:  {"xori", FormatI, opcodeOpImm, 0b100, 0, false, false},
	OpOri:   {"ori", FormatI, opcodeOpImm, 0b110, 0, false, false},
	OpAndi:  {"andi", FormatI, opcodeOpImm, 0b111, 0, false, false},
	OpSlli:  {"slli", FormatI, opcodeOpImm, 0b001, 0b0000000, true, true},
	OpSrli:  {"srli", FormatI, opcodeOpImm, 0b101, 0b0000000, true, true},
	OpSrai:  {"srai", FormatI, opcodeOpImm, 0b101, 0b0100000, true, true},

	OpLb:  {"lb", FormatI, opcodeLoad, 0b000, 0, false, false},
	OpLh:  {"lh", FormatI, opcodeLoad, 0b001, 0, false, false},
	OpLw:  {"lw", FormatI, opcodeLoad, 0b010, 0, false, false},
	OpLbu: {"lbu", FormatI, opcodeLoad, 0b100, 0, false, false},
	OpLhu: {"lhu", FormatI, opcodeLoad, 0b101, 0, false, false},

	OpSb: {"sb", FormatS, opcodeStore, 0b000, 0, false, false},
	OpSh: {"sh", FormatS, opcodeStore, 0b001, 0, false, false},
	OpSw: {"sw", FormatS, opcodeStore, 0b010, 0, false, false},

	OpBeq:  {"beq", FormatB, opcodeBranch, 0b000, 0, false, false},
	OpBne:  {"bne", FormatB, opcodeBranch, 0b001, 0, false, false},
	OpBlt:  {"blt", FormatB, opcodeBranch, 0b100, 0, false, false},
	OpBge:  {"bge", FormatB, opcodeBranch, 0b101, 0, false, false},
	OpBltu: {"bltu", FormatB, opcodeBranch, 0b110, 0, false, false},
	OpBgeu: {"bgeu", FormatB, opcodeBranch, 0b111, 0, false, false},

	OpJal:   {"jal", FormatJ, opcodeJal, 0, 0, false, false},
	OpJalr:  {"jalr", FormatI, opcodeJalr, 0b000, 0, false, false},
	OpLui:   {"lui", FormatU, opcodeLui, 0, 0, false, false},
	OpAuipc: {"auipc", FormatU, opcodeAuipc, 0, 0, false, false},
}

// String returns the canonical mnemonic for op.
func (op Op) String() string {
	if d, ok := descs[op]; ok {
		return d.name
	}
	return "???"
}

var mnemonicToOp = func() map[string]Op {
	m := make(map[string]Op, len(descs))
	for op, d := range descs {
		m[d.name] = op
	}
	return m
}()

// LookupMnemonic resolves a real (non-pseudo) RV32IM mnemonic to its Op.
func LookupMnemonic(name string) (Op, error) {
	if op, ok := mnemonicToOp[name]; ok {
		return op, nil
	}
	return 0, makeError(ErrUnknownMnemonic, "%q", name)
}
