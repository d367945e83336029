package asm

import "strings"

// ignoredDirectives are accepted and silently dropped: debug/metadata
// directives that carry no effect on the assembled image.
var ignoredDirectives = map[string]bool{
	"size": true, "type": true, "file": true, "attribute": true,
	"ident": true, "option": true,
}

func (p *Parser) parseDirective(name string, rest string) error {
	if name == "section" {
		return p.parseSectionDirective(rest)
	}

	switch name {
	case "text":
		p.setSection(SectionText)
		return nil
	case "data", "sdata":
		p.setSection(SectionData)
		return nil
	case "bss", "sbss":
		p.setSection(SectionBss)
		return nil
	case "rodata":
		p.setSection(SectionRodata)
		return nil

	case "align", "p2align":
		return p.directiveAlign(rest)
	case "balign":
		return p.directiveBalign(rest)
	case "byte":
		return p.directiveInteger(rest, WidthByte)
	case "short", "half", "2byte":
		return p.directiveInteger(rest, WidthHalf)
	case "long", "word", "4byte":
		return p.directiveInteger(rest, WidthWord)
	case "string", "asciz":
		return p.directiveAsciz(rest)
	case "zero":
		return p.directiveZero(rest)
	case "globl", "global":
		return p.directiveGlobl(rest)
	}

	if ignoredDirectives[name] {
		return nil
	}

	p.warnOnce(name)
	return nil
}

func (p *Parser) parseSectionDirective(rest string) error {
	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, ".")
	switch {
	case strings.HasPrefix(rest, "text"):
		p.setSection(SectionText)
	case strings.HasPrefix(rest, "data"), strings.HasPrefix(rest, "sdata"):
		p.setSection(SectionData)
	case strings.HasPrefix(rest, "bss"), strings.HasPrefix(rest, "sbss"):
		p.setSection(SectionBss)
	case strings.HasPrefix(rest, "rodata"):
		p.setSection(SectionRodata)
	default:
		p.warnOnce("section")
		p.setSection(SectionUnknown)
	}
	return nil
}

func (p *Parser) directiveAlign(rest string) error {
	token, _ := firstToken(rest)
	n, err := parseIntLiteral(token)
	if err != nil || n < 0 || n >= 20 {
		return makeError(ErrInvalidLiteral, "invalid alignment %q", token)
	}
	p.items = append(p.items, &Alignment{Bytes: uint32(1) << uint(n)})
	return nil
}

// directiveBalign is .align's literal-width sibling: the operand is the
// byte alignment itself rather than a power-of-two exponent, but it is
// rejected past the same 2^20 ceiling as .align/.p2align.
func (p *Parser) directiveBalign(rest string) error {
	token, _ := firstToken(rest)
	n, err := parseIntLiteral(token)
	if err != nil || n < 0 || n >= 1<<20 {
		return makeError(ErrInvalidLiteral, "invalid alignment %q", token)
	}
	p.items = append(p.items, &Alignment{Bytes: uint32(n)})
	return nil
}

func (p *Parser) directiveInteger(rest string, width IntegerDataWidth) error {
	token, _ := firstToken(rest)

	if width == WidthWord {
		imm, symbol, isSymbol := parseImmediateOrSymbol(token)
		if isSymbol {
			p.items = append(p.items, &IntegerData{Width: width, Symbol: symbol})
			return nil
		}
		p.items = append(p.items, &IntegerData{Width: width, Value: int64(imm)})
		return nil
	}

	v, err := parseIntLiteral(token)
	if err != nil {
		return err
	}
	p.items = append(p.items, &IntegerData{Width: width, Value: v})
	return nil
}

func (p *Parser) directiveAsciz(rest string) error {
	text, err := unquote(strings.TrimSpace(rest))
	if err != nil {
		return err
	}
	p.items = append(p.items, &ASCIZ{Text: text})
	return nil
}

func (p *Parser) directiveZero(rest string) error {
	token, _ := firstToken(rest)
	n, err := parseIntLiteral(token)
	if err != nil || n < 0 {
		return makeError(ErrInvalidLiteral, "invalid zero count %q", token)
	}
	p.items = append(p.items, &ZeroBytes{Count: uint32(n)})
	return nil
}

func (p *Parser) directiveGlobl(rest string) error {
	name := strings.TrimSpace(rest)
	if name == "" {
		return makeError(ErrMalformedOperands, ".globl requires a symbol name")
	}
	if existing, ok := p.labels[name]; ok {
		existing.Global = true
		return nil
	}
	p.labels[name] = &Label{Name: name, Global: true}
	return nil
}

// unquote strips a leading/trailing '"' and resolves backslash escapes in a
// .asciz/.string operand.
func unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", makeError(ErrInvalidLiteral, "expected a quoted string, got %q", text)
	}
	inner := text[1 : len(text)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] != '\\' || i+1 >= len(inner) {
			b.WriteByte(inner[i])
			continue
		}
		i++
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '"':
			b.WriteByte(inner[i])
		default:
			b.WriteByte(inner[i])
		}
	}
	return b.String(), nil
}
