package resolver

import "encoding/binary"

// locListEntry is one [low, high) range plus its location expression,
// decoded from a raw .debug_loc list as produced by DWARF ≤4 (the form
// this module targets per SPEC_FULL.md §4's DWARF-≤4 scoping note).
type locListEntry struct {
	low, high uint64
	expr      []byte
}

// parseLocList decodes the location list starting at off within loc,
// honoring base-address-selection entries (all-ones low address followed
// by a new base) even though kernel builds rarely emit them. Returns the
// decoded entries in file order; list ends at the first (0,0) terminator.
func parseLocList(loc []byte, off int, addrSize int, order elfByteOrder) ([]locListEntry, error) {
	if off < 0 || off >= len(loc) {
		return nil, errf(Malformed, "location list offset %d out of range", off)
	}
	bo := byteOrderOf(order)
	readAddr := func(b []byte) uint64 {
		if addrSize == 4 {
			return uint64(bo.Uint32(b))
		}
		return bo.Uint64(b)
	}
	maxAddr := uint64(1)<<(uint(addrSize)*8) - 1

	var entries []locListEntry
	base := uint64(0)
	p := off
	for {
		if p+2*addrSize > len(loc) {
			return nil, errf(Malformed, "truncated location list at offset %d", p)
		}
		low := readAddr(loc[p:])
		high := readAddr(loc[p+addrSize:])
		p += 2 * addrSize
		if low == 0 && high == 0 {
			break
		}
		if low == maxAddr {
			base = high
			continue
		}
		if p+2 > len(loc) {
			return nil, errf(Malformed, "truncated location expression length at offset %d", p)
		}
		exprLen := int(bo.Uint16(loc[p:]))
		p += 2
		if p+exprLen > len(loc) {
			return nil, errf(Malformed, "truncated location expression at offset %d", p)
		}
		entries = append(entries, locListEntry{low: base + low, high: base + high, expr: loc[p : p+exprLen]})
		p += exprLen
	}
	return entries, nil
}

// locationAt returns the expression covering pc, or ok=false if none.
func locationAt(entries []locListEntry, pc uint64) ([]byte, bool) {
	for _, e := range entries {
		if pc >= e.low && pc < e.high {
			return e.expr, true
		}
	}
	return nil, false
}

func byteOrderOf(o elfByteOrder) binary.ByteOrder {
	if o.littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
