package asm

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// SyntaxError is a parse-stratum fatal error: the file/line it occurred at,
// plus the one-to-three line window around it for the colorized terminal
// report, mirroring original_source's Assembler::parse_line error window.
type SyntaxError struct {
	File    string
	Line    int
	Context []string // previous ("" on line 1), offending, next (absent on the last line)
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Pretty renders the three-line window with the offending line highlighted,
// colorized when useColor is true.
func (e *SyntaxError) Pretty(useColor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to parse %s:%d\n", e.File, e.Line)
	highlight := color.New(color.FgRed, color.Bold)
	for i, line := range e.Context {
		lineNo := e.Line - 1 + i
		prefix := fmt.Sprintf("%4d  |  ", lineNo)
		if lineNo == e.Line {
			if useColor {
				b.WriteString(highlight.Sprint(prefix + line))
			} else {
				b.WriteString(prefix + line + "  <-- here")
			}
		} else {
			b.WriteString(prefix + line)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%v\n", e.Err)
	return b.String()
}

// Parser turns assembly source into a sequence of section-tagged Items and
// a label table, one file at a time; the linker later concatenates the
// per-file results. It keeps no state beyond a single file.
type Parser struct {
	fileName string
	logger   *slog.Logger

	lines   []string
	lineNum int

	section  Section
	sections []SectionRun
	items    []Item
	labels   map[string]*Label

	warnedDirectives map[string]struct{}
}

// NewParser creates a parser for fileName; logger receives once-per-name
// warnings for unknown-but-ignored directives. A nil logger discards them.
func NewParser(fileName string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{
		fileName:         fileName,
		logger:           logger,
		labels:           make(map[string]*Label),
		warnedDirectives: make(map[string]struct{}),
	}
}

// SectionRun records one contiguous run of Items belonging to the same
// section, in the order sections were entered — the Go analogue of
// original_source's Assembler::sections transition list, since source
// text may switch sections (.text/.data/...) back and forth.
type SectionRun struct {
	Start   int // index into Items where this run begins
	Section Section
}

// Result is everything the linker needs from one assembled file.
type Result struct {
	FileName string
	Items    []Item
	Labels   map[string]*Label
	Sections []SectionRun
}

// Parse reads source line by line and assembles it into a Result.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lines = append(p.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("asm: reading %s: %w", p.fileName, err)
	}

	for i, raw := range p.lines {
		p.lineNum = i + 1
		if err := p.parseLine(raw); err != nil {
			return nil, &SyntaxError{File: p.fileName, Line: p.lineNum, Context: p.window(i), Err: err}
		}
	}

	return &Result{FileName: p.fileName, Items: p.items, Labels: p.labels, Sections: p.sections}, nil
}

// setSection records a section transition at the current item position and
// switches subsequent items into it.
func (p *Parser) setSection(s Section) {
	p.section = s
	p.sections = append(p.sections, SectionRun{Start: len(p.items), Section: s})
}

func (p *Parser) window(i int) []string {
	var out []string
	if i > 0 {
		out = append(out, p.lines[i-1])
	} else {
		out = append(out, "")
	}
	out = append(out, p.lines[i])
	if i+1 < len(p.lines) {
		out = append(out, p.lines[i+1])
	}
	return out
}

func (p *Parser) parseLine(raw string) error {
	line := stripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if label, rest, ok := splitLabel(line); ok {
		if err := p.addLabel(label); err != nil {
			return err
		}
		line = strings.TrimSpace(rest)
		if line == "" {
			return nil
		}
	}

	token, rest := firstToken(line)
	if token == "" {
		return nil
	}

	if token[0] == '.' {
		return p.parseDirective(token[1:], rest)
	}
	return p.parseInstruction(token, rest)
}

// splitLabel recognizes a leading "name:" and returns the label name and
// whatever remains on the line after it (a directive/instruction may share
// the line with its label).
func splitLabel(line string) (label, rest string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", false
	}
	candidate := line[:colon]
	if !isIdent(candidate) {
		return "", "", false
	}
	return candidate, line[colon+1:], true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '.':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func firstToken(line string) (token, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

func stripComment(line string) string {
	inString := false
	for i, r := range line {
		switch r {
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

func (p *Parser) addLabel(name string) error {
	if existing, ok := p.labels[name]; ok && existing.DefLine != 0 {
		return makeError(ErrDuplicateLabel, "%q first defined at line %d", name, existing.DefLine)
	}
	if p.section == SectionUnknown {
		return makeError(ErrLabelOutsideSection, "%q", name)
	}
	global := false
	if existing, ok := p.labels[name]; ok {
		global = existing.Global
	}
	p.labels[name] = &Label{
		Name:    name,
		DefLine: p.lineNum,
		Index:   len(p.items),
		Global:  global,
		Section: p.section,
	}
	return nil
}

func (p *Parser) parseInstruction(mnemonic string, rest string) error {
	items, err := buildMnemonic(mnemonic, splitOperands(rest))
	if err != nil {
		return err
	}
	p.items = append(p.items, items...)
	return nil
}

func (p *Parser) warnOnce(directive string) {
	if _, seen := p.warnedDirectives[directive]; seen {
		return
	}
	p.warnedDirectives[directive] = struct{}{}
	p.logger.Warn("directive ignored", "directive", directive, "file", p.fileName, "line", p.lineNum)
}
