//go:build arm64
// +build arm64

package resolver

import "golang.org/x/arch/arm64/arm64asm"

// instructionBoundaryOK reports whether byteOffset lands on an AArch64
// instruction start. AArch64 instructions are a fixed 4 bytes, so this
// reduces to an alignment check, but still runs the decode to reject an
// offset that lands inside a literal pool or otherwise undecodable word.
func instructionBoundaryOK(code []byte, byteOffset uint64) (bool, error) {
	if byteOffset%4 != 0 {
		return false, nil
	}
	if byteOffset == 0 {
		return true, nil
	}
	if int(byteOffset)+4 > len(code) {
		return false, errf(OutOfRange, "byte offset %d beyond function body", byteOffset)
	}
	if _, err := arm64asm.Decode(code[byteOffset:]); err != nil {
		return false, wrapf(Malformed, err, "disassemble at offset %d", byteOffset)
	}
	return true, nil
}
