package resolver

import "debug/dwarf"

// FrameBase is the canonical reduced form of DW_AT_frame_base at a PC:
// either absent, or a single register+constant-offset rule. A CFA-derived
// frame base is resolved into this same shape at this stage, per spec
// §4.6 step 1 ("resolve ... into the same canonical form").
type FrameBase struct {
	Present  bool
	Register uint64
	Offset   int64
}

// resolveFrameBase implements spec §4.6 step 1 for subprogram sp at pc.
func resolveFrameBase(f *DwarfFile, sp *dwarf.Entry, pc uint64) (FrameBase, error) {
	expr, ok, err := exprAt(f, sp, dwarf.AttrFrameBase, pc)
	if err != nil {
		return FrameBase{}, err
	}
	if !ok {
		return FrameBase{}, nil
	}
	decoded, ok := decodeTopOp(expr, f.AddrSize(), f.ByteOrder())
	if !ok {
		return FrameBase{}, nil
	}

	switch decoded.kind {
	case opKindBreg:
		return FrameBase{Present: true, Register: decoded.reg, Offset: decoded.offset}, nil

	case opKindCFA:
		rule, ok := resolveCFARule(f, pc)
		if !ok {
			return FrameBase{}, nil
		}
		return FrameBase{Present: true, Register: rule.register, Offset: rule.offset}, nil

	default:
		// Anything else (direct register frame base, composite
		// expressions) falls outside spec §4.6's canonical forms; treat
		// as no usable frame base rather than guessing.
		return FrameBase{}, nil
	}
}

// resolveCFARule tries .debug_frame first, then .eh_frame, mirroring how
// a linked kernel image may carry either or both.
func resolveCFARule(f *DwarfFile, pc uint64) (cfaRule, bool) {
	if df := f.DebugFrame(); df != nil {
		if rule, ok := resolveCFA(df, f.AddrSize(), f.ByteOrder(), false, pc); ok {
			return rule, true
		}
	}
	if ef := f.EhFrame(); ef != nil {
		if rule, ok := resolveCFA(ef, f.AddrSize(), f.ByteOrder(), true, pc); ok {
			return rule, true
		}
	}
	return cfaRule{}, false
}
