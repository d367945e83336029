package vm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/dark-riscv/rvsim/internal/isa"
	"github.com/dark-riscv/rvsim/internal/libc"
)

// Argument/return registers, RISC-V calling convention.
const (
	regA0 = isa.Reg(10)
	regA1 = isa.Reg(11)
	regA2 = isa.Reg(12)
)

// dispatchLibc runs when pc lands in the synthetic libc stub range: it
// looks up which function that PC names, invokes the matching Go
// implementation with arguments from a0..a2 (printf/sprintf also read
// their variadic arguments from a1..a7), then returns through ra exactly
// as a real `call` would —
// spec.md §4.7's "invokes the corresponding host function ... returns in
// a0" contract.
func (m *Machine) dispatchLibc() error {
	index := int((m.Registers.PC - libc.Base) / 4)
	if index < 0 || index >= len(libc.Names) {
		return &Fault{Kind: InsUnknown, PC: m.Registers.PC, Message: "libc stub index out of range"}
	}

	name := libc.Names[index]
	fn, ok := libcImpls[name]
	if !ok {
		return &Fault{Kind: InsUnknown, PC: m.Registers.PC, Message: "libc function " + name + " not implemented"}
	}
	if err := fn(m); err != nil {
		if err == errExit {
			return nil // pc is already EndPC; Run's next iteration halts
		}
		return err
	}

	m.Registers.PC = m.Registers.Get(isa.Reg(1)) // ra
	return nil
}

var libcImpls = map[string]func(m *Machine) error{
	"getchar": libcGetchar,
	"putchar": libcPutchar,
	"printf":  libcPrintf,
	"scanf":   libcScanf,
	"malloc":  libcMalloc,
	"calloc":  libcCalloc,
	"free":    libcFree,
	"sprintf": libcSprintf,
	"memcpy":  libcMemcpy,
	"memset":  libcMemset,
	"strlen":  libcStrlen,
	"strcpy":  libcStrcpy,
	"strcmp":  libcStrcmp,
	"exit":    libcExit,
}

func libcGetchar(m *Machine) error {
	var b [1]byte
	n, err := m.Device.In.Read(b[:])
	if n == 0 || err != nil {
		m.Registers.Set(regA0, 0xffffffff)
		return nil
	}
	m.Registers.Set(regA0, uint32(b[0]))
	return nil
}

func libcPutchar(m *Machine) error {
	c := byte(m.Registers.Get(regA0))
	fmt.Fprintf(m.Device.Out, "%c", c)
	return nil
}

// cString reads a NUL-terminated string starting at addr.
func (m *Machine) cString(addr uint32) string {
	span := m.Memory.LibcAccess(addr)
	for i, b := range span {
		if b == 0 {
			return string(span[:i])
		}
	}
	return string(span)
}

// formatArgs renders a printf-style format string using successive
// argument registers starting at a1, supporting the common %d/%u/%x/%s/%c/%%
// verbs — the subset any RV32IM test program actually exercises.
func (m *Machine) formatArgs(format string) string {
	var b strings.Builder
	argRegs := []isa.Reg{regA1, regA2, isa.Reg(13), isa.Reg(14), isa.Reg(15), isa.Reg(16), isa.Reg(17)}
	argIndex := 0
	nextArg := func() uint32 {
		if argIndex >= len(argRegs) {
			return 0
		}
		v := m.Registers.Get(argRegs[argIndex])
		argIndex++
		return v
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'd':
			b.WriteString(strconv.FormatInt(int64(int32(nextArg())), 10))
		case 'u':
			b.WriteString(strconv.FormatUint(uint64(nextArg()), 10))
		case 'x':
			b.WriteString(strconv.FormatUint(uint64(nextArg()), 16))
		case 'c':
			b.WriteByte(byte(nextArg()))
		case 's':
			b.WriteString(m.cString(nextArg()))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

func libcPrintf(m *Machine) error {
	out := m.formatArgs(m.cString(m.Registers.Get(regA0)))
	n, _ := fmt.Fprint(m.Device.Out, out)
	m.Registers.Set(regA0, uint32(n))
	return nil
}

func libcSprintf(m *Machine) error {
	dest := m.Registers.Get(regA0)
	out := m.formatArgs(m.cString(m.Registers.Get(regA1)))
	span := m.Memory.LibcAccess(dest)
	n := copy(span, out)
	if n < len(span) {
		span[n] = 0
	}
	m.Registers.Set(regA0, uint32(len(out)))
	return nil
}

// libcScanf supports a single "%d" conversion only: when the format contains
// "%d" anywhere, it reads one whitespace-delimited token from the input
// stream and stores it through the pointer in a1; other formats return 0.
func libcScanf(m *Machine) error {
	format := m.cString(m.Registers.Get(regA0))
	reader := bufio.NewReader(m.Device.In)
	if strings.Contains(format, "%d") {
		var token strings.Builder
		for {
			b, err := reader.ReadByte()
			if err != nil {
				break
			}
			if b == ' ' || b == '\n' || b == '\t' {
				if token.Len() > 0 {
					break
				}
				continue
			}
			token.WriteByte(b)
		}
		v, _ := strconv.Atoi(token.String())
		if fault := m.Memory.Store(m.Registers.PC, m.Registers.Get(regA1), 4, uint32(int32(v))); fault != nil {
			m.Registers.Set(regA0, 0)
			return nil
		}
		m.Registers.Set(regA0, 1)
		return nil
	}
	m.Registers.Set(regA0, 0)
	return nil
}

func libcMalloc(m *Machine) error {
	size := int32(m.Registers.Get(regA0))
	ptr, ok := m.Memory.Sbrk(size)
	if !ok {
		m.Registers.Set(regA0, 0)
		return nil
	}
	m.Registers.Set(regA0, ptr)
	return nil
}

func libcCalloc(m *Machine) error {
	n := m.Registers.Get(regA0)
	size := m.Registers.Get(regA1)
	ptr, ok := m.Memory.Sbrk(int32(n * size))
	if !ok {
		m.Registers.Set(regA0, 0)
		return nil
	}
	m.Registers.Set(regA0, ptr) // heap bytes are already zero-valued on growth
	return nil
}

func libcFree(m *Machine) error {
	// The sbrk-only allocator never reclaims individual blocks.
	m.Registers.Set(regA0, 0)
	return nil
}

func libcMemcpy(m *Machine) error {
	dest, src, n := m.Registers.Get(regA0), m.Registers.Get(regA1), m.Registers.Get(regA2)
	copy(m.Memory.LibcAccess(dest)[:n], m.Memory.LibcAccess(src)[:n])
	m.Registers.Set(regA0, dest)
	return nil
}

func libcMemset(m *Machine) error {
	dest, value, n := m.Registers.Get(regA0), byte(m.Registers.Get(regA1)), m.Registers.Get(regA2)
	span := m.Memory.LibcAccess(dest)[:n]
	for i := range span {
		span[i] = value
	}
	m.Registers.Set(regA0, dest)
	return nil
}

func libcStrlen(m *Machine) error {
	m.Registers.Set(regA0, uint32(len(m.cString(m.Registers.Get(regA0)))))
	return nil
}

func libcStrcpy(m *Machine) error {
	dest, src := m.Registers.Get(regA0), m.Registers.Get(regA1)
	s := m.cString(src)
	span := m.Memory.LibcAccess(dest)
	copy(span, s)
	span[len(s)] = 0
	m.Registers.Set(regA0, dest)
	return nil
}

func libcStrcmp(m *Machine) error {
	a := m.cString(m.Registers.Get(regA0))
	b := m.cString(m.Registers.Get(regA1))
	m.Registers.Set(regA0, uint32(int32(strings.Compare(a, b))))
	return nil
}

// libcExit sets pc to the halt sentinel directly; a0 is already the exit
// code the caller placed there, matching the C convention of exit's
// argument doubling as the process's reported return value.
func libcExit(m *Machine) error {
	m.Registers.PC = EndPC
	return errExit
}

// errExit signals dispatchLibc to skip the normal "return through ra"
// step, since exit never returns to its caller.
var errExit = errExitSignal{}

type errExitSignal struct{}

func (errExitSignal) Error() string { return "exit" }
