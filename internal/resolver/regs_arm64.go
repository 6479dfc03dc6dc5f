//go:build arm64
// +build arm64

package resolver

import "strconv"

// arm64DwarfRegs is the AArch64 DWARF register-number to assembler-name
// table for the 31 general-purpose registers plus sp, mirroring
// amd64DwarfRegs's shape for the other architecture this module supports
// (the teacher's own func_info_x86.go only ever targets 386/amd64).
var arm64DwarfRegs = func() []string {
	regs := make([]string, 32)
	for i := 0; i < 31; i++ {
		regs[i] = "x" + strconv.Itoa(i)
	}
	regs[31] = "sp"
	return regs
}()

// RegisterName maps a DWARF register number to its AArch64 assembler
// name.
func RegisterName(n uint64) (string, bool) {
	if n >= uint64(len(arm64DwarfRegs)) {
		return "", false
	}
	return arm64DwarfRegs[n], true
}
