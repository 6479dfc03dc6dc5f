package resolver

import "testing"

// buildDebugFrameFixture assembles a minimal non-eh_frame .debug_frame
// section with one CIE (DW_CFA_def_cfa rsp+8) and one FDE covering
// [0x1000, 0x1100) that overrides the offset to 16 via DW_CFA_def_cfa_offset.
func buildDebugFrameFixture() []byte {
	cie := []byte{
		0x0c, 0x00, 0x00, 0x00, // length = 12
		0xff, 0xff, 0xff, 0xff, // CIE_id
		0x01,                   // version
		0x00,                   // augmentation string ""
		0x01,                   // code_alignment_factor ULEB128 = 1
		0x01,                   // data_alignment_factor SLEB128 = 1
		0x10,                   // return_address_register = 16
		0x0c, 0x07, 0x08, // DW_CFA_def_cfa reg=7 offset=8
	}
	fde := []byte{
		0x18, 0x00, 0x00, 0x00, // length = 24
		0x00, 0x00, 0x00, 0x00, // CIE_pointer -> offset 0 (the CIE above)
		0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // initial_location = 0x1000
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // address_range = 0x100
		0x02, 0x10, // DW_CFA_advance_loc1 16 (loc -> 0x1010)
		0x0e, 0x10, // DW_CFA_def_cfa_offset 16
	}
	return append(cie, fde...)
}

func TestResolveCFAFromDebugFrame(t *testing.T) {
	section := buildDebugFrameFixture()
	rule, ok := resolveCFA(section, 8, littleEndianOrder(), false, 0x1010)
	if !ok {
		t.Fatalf("resolveCFA failed to find a rule")
	}
	if rule.register != 7 || rule.offset != 16 {
		t.Errorf("rule = %+v, want register=7 offset=16", rule)
	}
}

func TestResolveCFAOutsideRange(t *testing.T) {
	section := buildDebugFrameFixture()
	if _, ok := resolveCFA(section, 8, littleEndianOrder(), false, 0x2000); ok {
		t.Errorf("expected no rule for a pc outside any FDE's range")
	}
}

func TestResolveCFABeforeOverride(t *testing.T) {
	section := buildDebugFrameFixture()
	// pc equal to initial_location: only the CIE's initial instructions
	// (offset 8) have applied, the FDE's def_cfa_offset has not run yet.
	rule, ok := resolveCFA(section, 8, littleEndianOrder(), false, 0x1000)
	if !ok {
		t.Fatalf("resolveCFA failed to find a rule")
	}
	if rule.register != 7 || rule.offset != 8 {
		t.Errorf("rule = %+v, want register=7 offset=8 (pre-FDE-instruction state)", rule)
	}
}
