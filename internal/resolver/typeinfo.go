package resolver

import (
	"debug/dwarf"
	"strconv"
)

// typeTag renders t as the kernel tracer's size/signedness tag, "s<bits>"
// or "u<bits>", per spec §4.4. A zero byte_size means the kernel should
// infer the type, so the second return is false. clamped reports whether
// the natural bit width exceeded 64 and was clamped, so the caller can
// log the warning spec §4.4/§8 requires.
func typeTag(t dwarf.Type) (tag string, clamped bool, ok bool) {
	real := resolveType(t)
	sz := byteSize(real)
	if sz == 0 {
		return "", false, false
	}
	bits := sz * 8
	if bits > 64 {
		bits = 64
		clamped = true
	}
	if isSignedType(real) {
		return "s" + strconv.FormatUint(bits, 10), clamped, true
	}
	return "u" + strconv.FormatUint(bits, 10), clamped, true
}

// structField looks up a member by name on t, which must resolve to a
// struct or union, per die_get_data_member_location's byte-offset result.
// The returned offset already accounts for DW_AT_data_member_location,
// since Go's debug/dwarf parser evaluates that attribute for every
// StructField at parse time.
func structField(t dwarf.Type, name string) (*dwarf.StructField, bool) {
	real := resolveType(t)
	st, ok := real.(*dwarf.StructType)
	if !ok {
		return nil, false
	}
	for _, f := range st.Field {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
