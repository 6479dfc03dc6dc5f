//go:build 386 || amd64
// +build 386 amd64

package resolver

import "golang.org/x/arch/x86/x86asm"

// instructionBoundaryOK disassembles forward from the function's entry
// (offset 0 of code) and reports whether byteOffset lands exactly on an
// instruction start, per component L: a raw byte_offset the caller typed
// by hand is otherwise unverified and could split a multi-byte x86
// instruction, producing a probe that traps mid-instruction.
func instructionBoundaryOK(code []byte, byteOffset uint64) (bool, error) {
	if byteOffset == 0 {
		return true, nil
	}
	off := uint64(0)
	for off < byteOffset {
		if int(off) >= len(code) {
			return false, errf(OutOfRange, "byte offset %d beyond function body", byteOffset)
		}
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			return false, wrapf(Malformed, err, "disassemble at offset %d", off)
		}
		if inst.Len == 0 {
			return false, errf(Malformed, "zero-length instruction at offset %d", off)
		}
		off += uint64(inst.Len)
	}
	return off == byteOffset, nil
}
