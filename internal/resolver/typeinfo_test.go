package resolver

import (
	"debug/dwarf"
	"testing"
)

func TestTypeTag(t *testing.T) {
	intType := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4, Name: "int"}}}
	uintType := &dwarf.UintType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4, Name: "unsigned int"}}}
	voidSized := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 0, Name: "void"}}}
	wide := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 16, Name: "__int128"}}}

	if tag, clamped, ok := typeTag(intType); !ok || tag != "s32" || clamped {
		t.Errorf("typeTag(int32) = (%q, %v, %v), want (s32, false, true)", tag, clamped, ok)
	}
	if tag, _, ok := typeTag(uintType); !ok || tag != "u32" {
		t.Errorf("typeTag(uint32) = (%q, _, %v), want (u32, true)", tag, ok)
	}
	if _, _, ok := typeTag(voidSized); ok {
		t.Errorf("typeTag(zero byte_size) should report ok=false")
	}
	if tag, clamped, ok := typeTag(wide); !ok || tag != "s64" || !clamped {
		t.Errorf("typeTag(128-bit) = (%q, %v, %v), want (s64, true, true)", tag, clamped, ok)
	}
}

func TestResolveTypeUnwrapsTypedefAndQual(t *testing.T) {
	base := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4, Name: "int"}}}
	qual := &dwarf.QualType{CommonType: dwarf.CommonType{Name: "const int"}, Qual: "const", Type: base}
	typedef := &dwarf.TypedefType{CommonType: dwarf.CommonType{Name: "pid_t"}, Type: qual}

	got := resolveType(typedef)
	if got != dwarf.Type(base) {
		t.Errorf("resolveType did not unwrap to the base int type, got %#v", got)
	}
}

func TestIsSignedType(t *testing.T) {
	signed := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4}}}
	unsigned := &dwarf.UintType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4}}}
	if !isSignedType(signed) {
		t.Errorf("expected IntType to be signed")
	}
	if isSignedType(unsigned) {
		t.Errorf("expected UintType to be unsigned")
	}
}
