package resolver

// cfaRule is the call-frame-information rule for the CFA at some PC: the
// CFA is defined as the value of register plus offset.
type cfaRule struct {
	register uint64
	offset   int64
}

// resolveCFA finds the FDE covering pc in section (raw .debug_frame or
// .eh_frame bytes) and replays its CIE-initial plus FDE instructions up to
// pc, tracking only the subset of CFI opcodes spec §4.6 names:
// DW_CFA_def_cfa(_sf), DW_CFA_def_cfa_register, DW_CFA_def_cfa_offset(_sf),
// the advance_loc family, and nop. Any other opcode halts replay and
// returns the rule accumulated so far — CFI streams this module targets
// (simple leaf-ish kernel functions using a CFA-relative frame base)
// rarely need more, and the alternative is vendoring a full unwinder.
func resolveCFA(section []byte, addrSize int, order elfByteOrder, isEhFrame bool, pc uint64) (cfaRule, bool) {
	bo := byteOrderOf(order)
	readUAddr := func(b []byte) uint64 {
		if addrSize == 4 {
			return uint64(bo.Uint32(b))
		}
		return bo.Uint64(b)
	}

	type cie struct {
		codeAlign uint64
		dataAlign int64
		instr     []byte
	}
	cies := map[int]cie{}

	p := 0
	for p+4 <= len(section) {
		lenStart := p
		length := uint64(bo.Uint32(section[p:]))
		p += 4
		if length == 0 {
			break
		}
		if length == 0xffffffff {
			// 64-bit DWARF format CFI is out of scope.
			break
		}
		entryEnd := p + int(length)
		if entryEnd > len(section) {
			break
		}
		idField := bo.Uint32(section[p:])
		p += 4

		isCIE := (isEhFrame && idField == 0) || (!isEhFrame && idField == 0xffffffff)
		if isCIE {
			version := section[p]
			p++
			// augmentation string
			start := p
			for p < entryEnd && section[p] != 0 {
				p++
			}
			aug := string(section[start:p])
			p++ // skip NUL
			if version >= 4 {
				p += 2 // address_size, segment_selector_size
			}
			codeAlign, n := decodeULEB128(section[p:entryEnd])
			p += n
			dataAlign, n := decodeSLEB128(section[p:entryEnd])
			p += n
			if version == 1 {
				p++ // return_address_register, single byte
			} else {
				_, n = decodeULEB128(section[p:entryEnd])
				p += n
			}
			if aug != "" {
				// Augmented CIEs (e.g. "zR") carry extra fields this
				// module does not interpret; treat as unsupported.
				cies[lenStart] = cie{codeAlign: codeAlign, dataAlign: dataAlign, instr: nil}
			} else {
				cies[lenStart] = cie{codeAlign: codeAlign, dataAlign: dataAlign, instr: section[p:entryEnd]}
			}
			p = entryEnd
			continue
		}

		// FDE.
		var ciePointer int
		if isEhFrame {
			ciePointer = lenStart + 4 - int(idField)
		} else {
			ciePointer = int(idField)
		}
		if p+2*addrSize > entryEnd {
			p = entryEnd
			continue
		}
		initialLoc := readUAddr(section[p:])
		addrRange := readUAddr(section[p+addrSize:])
		p += 2 * addrSize
		instr := section[p:entryEnd]
		p = entryEnd

		if pc < initialLoc || pc >= initialLoc+addrRange {
			continue
		}
		c, ok := cies[ciePointer]
		if !ok || c.instr == nil {
			return cfaRule{}, false
		}

		var rule cfaRule
		loc := initialLoc
		replay := func(stream []byte) bool {
			i := 0
			for i < len(stream) {
				op := stream[i]
				i++
				primary := op & 0xc0
				switch {
				case primary == 0x40: // DW_CFA_advance_loc
					delta := uint64(op&0x3f) * c.codeAlign
					if loc+delta > pc {
						return true
					}
					loc += delta
				case op == 0x00: // nop
				case op == 0x01: // set_loc
					if i+addrSize > len(stream) {
						return true
					}
					newLoc := readUAddr(stream[i:])
					i += addrSize
					if newLoc > pc {
						return true
					}
					loc = newLoc
				case op == 0x02: // advance_loc1
					if i+1 > len(stream) {
						return true
					}
					delta := uint64(stream[i]) * c.codeAlign
					i++
					if loc+delta > pc {
						return true
					}
					loc += delta
				case op == 0x03: // advance_loc2
					if i+2 > len(stream) {
						return true
					}
					delta := uint64(bo.Uint16(stream[i:])) * c.codeAlign
					i += 2
					if loc+delta > pc {
						return true
					}
					loc += delta
				case op == 0x04: // advance_loc4
					if i+4 > len(stream) {
						return true
					}
					delta := uint64(bo.Uint32(stream[i:])) * c.codeAlign
					i += 4
					if loc+delta > pc {
						return true
					}
					loc += delta
				case op == 0x0c: // def_cfa
					reg, n := decodeULEB128(stream[i:])
					i += n
					off, n := decodeULEB128(stream[i:])
					i += n
					rule = cfaRule{register: reg, offset: int64(off)}
				case op == 0x0d: // def_cfa_register
					reg, n := decodeULEB128(stream[i:])
					i += n
					rule.register = reg
				case op == 0x0e: // def_cfa_offset
					off, n := decodeULEB128(stream[i:])
					i += n
					rule.offset = int64(off)
				case op == 0x12: // def_cfa_sf
					reg, n := decodeULEB128(stream[i:])
					i += n
					off, n := decodeSLEB128(stream[i:])
					i += n
					rule = cfaRule{register: reg, offset: off * c.dataAlign}
				case op == 0x13: // def_cfa_offset_sf
					off, n := decodeSLEB128(stream[i:])
					i += n
					rule.offset = off * c.dataAlign
				default:
					return true
				}
			}
			return false
		}
		replay(c.instr)
		replay(instr)
		return rule, true
	}
	return cfaRule{}, false
}

// decodeULEB128 decodes a DWARF unsigned LEB128 value, matching the same
// encoding encoding/binary.Uvarint implements, but operating on a plain
// byte slice cursor rather than an io.ByteReader, which is what every
// call site here already has.
func decodeULEB128(b []byte) (uint64, int) {
	var result uint64
	var shift uint
	var i int
	for i < len(b) {
		byt := b[i]
		i++
		result |= uint64(byt&0x7f) << shift
		if byt&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, i
}
