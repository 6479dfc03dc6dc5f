package resolver

// decodeSLEB128 decodes a DWARF signed LEB128 value from the front of b,
// returning the value and the count of bytes consumed. encoding/binary's
// Varint cannot be reused here: it uses zigzag encoding, while DWARF's
// SLEB128 sign-extends the final group instead.
func decodeSLEB128(b []byte) (int64, int) {
	var result int64
	var shift uint
	var i int
	for i < len(b) {
		byt := b[i]
		i++
		result |= int64(byt&0x7f) << shift
		shift += 7
		if byt&0x80 == 0 {
			if shift < 64 && byt&0x40 != 0 {
				result |= -1 << shift
			}
			break
		}
	}
	return result, i
}
