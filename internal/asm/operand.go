package asm

import (
	"strconv"
	"strings"

	"github.com/dark-riscv/rvsim/internal/isa"
)

// splitOperands splits a comma-separated operand list, trimming whitespace
// around each field. "lw a0, -4(sp)" -> ["a0", "-4(sp)"].
func splitOperands(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	fields := strings.Split(rest, ",")
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// splitOffsetRegister splits the "off(reg)" memory operand syntax used by
// loads/stores/jalr, e.g. "-4(sp)" -> ("-4", "sp"), "(a0)" -> ("0", "a0").
func splitOffsetRegister(field string) (offset, reg string, ok bool) {
	open := strings.IndexByte(field, '(')
	closeIdx := strings.IndexByte(field, ')')
	if open < 0 || closeIdx < open {
		return "", "", false
	}
	offset = strings.TrimSpace(field[:open])
	if offset == "" {
		offset = "0"
	}
	reg = strings.TrimSpace(field[open+1 : closeIdx])
	return offset, reg, true
}

// parseImmediateOrSymbol parses a numeric literal (decimal, 0x hex, 0 octal,
// 'c' character) or, failing that, returns it unchanged as a symbol name
// for the linker to resolve.
func parseImmediateOrSymbol(field string) (imm int32, symbol string, isSymbol bool) {
	if v, err := parseIntLiteral(field); err == nil {
		return int32(v), "", false
	}
	return 0, field, true
}

func parseIntLiteral(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if len(text) >= 3 && text[0] == '\'' && text[len(text)-1] == '\'' {
		inner := text[1 : len(text)-1]
		r, _, _, err := strconv.UnquoteChar(inner, '\'')
		if err != nil {
			return 0, makeError(ErrInvalidLiteral, "%q", text)
		}
		return int64(r), nil
	}

	neg := false
	if strings.HasPrefix(text, "-") {
		neg = true
		text = text[1:]
	} else if strings.HasPrefix(text, "+") {
		text = text[1:]
	}

	var v int64
	var err error
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		v, err = strconv.ParseInt(text[2:], 16, 64)
	case len(text) > 1 && text[0] == '0':
		v, err = strconv.ParseInt(text, 8, 64)
	default:
		v, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		return 0, makeError(ErrInvalidLiteral, "%q", text)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func parseReg(name string) (isa.Reg, error) {
	return isa.ParseReg(name)
}
