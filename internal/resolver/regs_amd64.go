//go:build 386 || amd64
// +build 386 amd64

package resolver

// amd64DwarfRegs is the x86-64 System V psABI DWARF register-number to
// assembler-name table, the same build-tagged-table idiom the teacher
// uses in func_info_x86.go for its (BTF-argument-slot, not DWARF-register)
// lookup table.
var amd64DwarfRegs = []string{
	"rax", "rdx", "rcx", "rbx", "rsi", "rdi", "rbp", "rsp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"rip",
}

// RegisterName maps a DWARF register number to its x86-64 assembler name,
// the architecture-specific collaborator spec.md §4.3/§6 leaves injected.
func RegisterName(n uint64) (string, bool) {
	if n >= uint64(len(amd64DwarfRegs)) {
		return "", false
	}
	return amd64DwarfRegs[n], true
}
