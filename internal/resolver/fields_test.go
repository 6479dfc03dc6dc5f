package resolver

import (
	"debug/dwarf"
	"testing"
)

func TestWalkFieldsStructDot(t *testing.T) {
	intType := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4, Name: "int"}}}
	st := &dwarf.StructType{
		StructName: "task_struct",
		Field: []*dwarf.StructField{
			{Name: "pid", Type: intType, ByteOffset: 0},
			{Name: "prio", Type: intType, ByteOffset: 24},
		},
	}
	loc := Location{RegisterName: "di", Offset: 0, IsReference: true}
	steps := []FieldStep{{Name: "prio"}}

	frames, typ, err := walkFields(st, loc, steps)
	if err != nil {
		t.Fatalf("walkFields error: %v", err)
	}
	if len(frames) != 1 || frames[0] != 24 {
		t.Errorf("frames = %v, want [24]", frames)
	}
	if typ != dwarf.Type(intType) {
		t.Errorf("final type = %#v, want intType", typ)
	}
}

func TestWalkFieldsArrow(t *testing.T) {
	intType := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4, Name: "int"}}}
	st := &dwarf.StructType{
		StructName: "rq",
		Field: []*dwarf.StructField{
			{Name: "nr_running", Type: intType, ByteOffset: 8},
		},
	}
	ptr := &dwarf.PtrType{CommonType: dwarf.CommonType{Name: "rq *"}, Type: st}
	loc := Location{RegisterName: "di", Offset: 0, IsReference: true}
	steps := []FieldStep{{Name: "nr_running", IsDereference: true}}

	frames, typ, err := walkFields(ptr, loc, steps)
	if err != nil {
		t.Fatalf("walkFields error: %v", err)
	}
	if len(frames) != 2 || frames[0] != 0 || frames[1] != 8 {
		t.Errorf("frames = %v, want [0 8]", frames)
	}
	if typ != dwarf.Type(intType) {
		t.Errorf("final type = %#v, want intType", typ)
	}
}

func TestWalkFieldsDotOnPointerIsInvalid(t *testing.T) {
	st := &dwarf.StructType{StructName: "rq"}
	ptr := &dwarf.PtrType{CommonType: dwarf.CommonType{Name: "rq *"}, Type: st}
	loc := Location{RegisterName: "di", Offset: 0, IsReference: true}
	steps := []FieldStep{{Name: "nr_running"}}

	_, _, err := walkFields(ptr, loc, steps)
	if err == nil {
		t.Fatalf("expected error for '.' on pointer type")
	}
}

func TestWalkFieldsArrayIndexNoFrameIsNotSupported(t *testing.T) {
	intType := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4}}}
	arr := &dwarf.ArrayType{CommonType: dwarf.CommonType{Name: "int[8]"}, Type: intType}
	loc := Location{RegisterName: "di", IsReference: false}
	steps := []FieldStep{{IsIndex: true, Index: 2}}

	_, _, err := walkFields(arr, loc, steps)
	if err == nil {
		t.Fatalf("expected NotSupported error for array index with no indirection frame")
	}
}

func TestWalkFieldsPointerIndexCreatesNewFrame(t *testing.T) {
	intType := &dwarf.IntType{BasicType: dwarf.BasicType{CommonType: dwarf.CommonType{ByteSize: 4}}}
	ptr := &dwarf.PtrType{CommonType: dwarf.CommonType{Name: "int *"}, Type: intType}
	loc := Location{RegisterName: "di", Offset: 0, IsReference: true}
	steps := []FieldStep{{IsIndex: true, Index: 3}}

	frames, typ, err := walkFields(ptr, loc, steps)
	if err != nil {
		t.Fatalf("walkFields error: %v", err)
	}
	if len(frames) != 2 || frames[1] != 12 {
		t.Errorf("frames = %v, want [0 12]", frames)
	}
	if typ != dwarf.Type(intType) {
		t.Errorf("final type = %#v, want intType", typ)
	}
}
