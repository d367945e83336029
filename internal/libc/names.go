// Package libc names the host functions addressable from RV32IM code
// through the synthetic call stubs living just below user text, mirroring
// original_source's libc::names table. Both the linker (which binds each
// name to its synthetic PC) and the interpreter (which dispatches a call
// through that PC back to a host implementation) import this list so the
// two stay in lock-step by construction instead of by convention.
package libc

// Names lists every libc stub function in fixed index order. Index i's
// synthetic call address is Base + i*4 (see Base below).
var Names = []string{
	"getchar", "putchar", "printf", "scanf",
	"malloc", "calloc", "free",
	"sprintf", "memcpy", "memset",
	"strlen", "strcpy", "strcmp",
	"exit",
}

// Base is the first synthetic PC, per spec's fixed memory map: libc stubs
// occupy [Base, Base+4*len(Names)).
const Base uint32 = 0x10000

// End is the first address past the libc stub region — where user text
// begins.
var End = Base + uint32(len(Names))*4

// Index returns the stub index for name, or false if name is not a known
// libc function.
func Index(name string) (int, bool) {
	for i, n := range Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Address returns the synthetic call PC for name.
func Address(name string) (uint32, bool) {
	i, ok := Index(name)
	if !ok {
		return 0, false
	}
	return Base + uint32(i)*4, true
}
