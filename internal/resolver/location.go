package resolver

import "debug/dwarf"

// DWARF location-expression opcodes this module interprets. Anything else
// is NotSupported per spec §4.3's closed op set.
const (
	opAddr            = 0x03
	opBreg0           = 0x70
	opBreg31          = 0x8f
	opBregx           = 0x92
	opReg0            = 0x50
	opReg31           = 0x6f
	opRegx            = 0x90
	opFbreg           = 0x91
	opCallFrameCFA    = 0x9c
)

// opKind tags the decoded shape of a single top-level location op.
type opKind int

const (
	opKindOther opKind = iota
	opKindAddr
	opKindFbreg
	opKindBreg
	opKindReg
	opKindCFA
)

type decodedOp struct {
	kind   opKind
	reg    uint64
	offset int64
	addr   uint64
}

// decodeTopOp decodes exactly the first operation of expr and ignores any
// trailing bytes, matching spec §4.3/§4.6's "supports exactly one top-level
// op" scoping: a composite expression with more ops than this still
// decodes its head, and the caller is responsible for treating anything
// unexpected as NotSupported.
func decodeTopOp(expr []byte, addrSize int, order elfByteOrder) (decodedOp, bool) {
	if len(expr) == 0 {
		return decodedOp{}, false
	}
	bo := byteOrderOf(order)
	op := expr[0]
	rest := expr[1:]
	switch {
	case op == opAddr:
		if len(rest) < addrSize {
			return decodedOp{}, false
		}
		var addr uint64
		if addrSize == 4 {
			addr = uint64(bo.Uint32(rest))
		} else {
			addr = bo.Uint64(rest)
		}
		return decodedOp{kind: opKindAddr, addr: addr}, true
	case op == opFbreg:
		n, _ := decodeSLEB128(rest)
		return decodedOp{kind: opKindFbreg, offset: n}, true
	case op >= opBreg0 && op <= opBreg31:
		n, _ := decodeSLEB128(rest)
		return decodedOp{kind: opKindBreg, reg: uint64(op - opBreg0), offset: n}, true
	case op == opBregx:
		reg, n := decodeULEB128(rest)
		off, _ := decodeSLEB128(rest[n:])
		return decodedOp{kind: opKindBreg, reg: reg, offset: off}, true
	case op >= opReg0 && op <= opReg31:
		return decodedOp{kind: opKindReg, reg: uint64(op - opReg0)}, true
	case op == opRegx:
		reg, _ := decodeULEB128(rest)
		return decodedOp{kind: opKindReg, reg: reg}, true
	case op == opCallFrameCFA:
		return decodedOp{kind: opKindCFA}, true
	default:
		return decodedOp{kind: opKindOther}, true
	}
}

// exprAt resolves a DW_AT_location/DW_AT_frame_base style attribute value
// (either a plain exprloc []byte or a loclistptr offset) to the single
// expression covering pc, per spec §4.3's "selects the first location
// list entry covering pc".
func exprAt(f *DwarfFile, die *dwarf.Entry, attr dwarf.Attr, pc uint64) ([]byte, bool, error) {
	field := die.AttrField(attr)
	if field == nil {
		return nil, false, nil
	}
	switch v := field.Val.(type) {
	case []byte:
		return v, true, nil
	case int64:
		entries, err := parseLocList(f.DebugLoc(), int(v), f.AddrSize(), f.ByteOrder())
		if err != nil {
			return nil, false, err
		}
		expr, ok := locationAt(entries, pc)
		return expr, ok, nil
	default:
		return nil, false, nil
	}
}

// Location is the canonical output of §4.3: either a global symbolic
// address, a direct register value, or a register-relative memory
// reference (the first, outermost indirection frame).
type Location struct {
	IsGlobal     bool
	GlobalName   string
	RegisterName string
	Offset       int64
	IsReference  bool
}

// resolveLocation implements spec §4.3 for one variable/parameter DIE.
func resolveLocation(f *DwarfFile, cfg *Config, varDie *dwarf.Entry, varName string, pc uint64, frameBase FrameBase) (Location, error) {
	expr, ok, err := exprAt(f, varDie, dwarf.AttrLocation, pc)
	if err != nil {
		return Location{}, err
	}
	if !ok {
		return Location{}, errf(NotSupported, "no DWARF location for %q at pc 0x%x", varName, pc)
	}
	decoded, ok := decodeTopOp(expr, f.AddrSize(), f.ByteOrder())
	if !ok {
		return Location{}, errf(Malformed, "empty location expression for %q", varName)
	}

	switch decoded.kind {
	case opKindAddr:
		return Location{IsGlobal: true, GlobalName: varName}, nil

	case opKindFbreg:
		if !frameBase.Present {
			return Location{}, errf(NotSupported, "DW_OP_fbreg for %q with no available frame base", varName)
		}
		name, ok := cfg.registerName(frameBase.Register)
		if !ok {
			return Location{}, errf(OutOfRange, "no register name for architecture register %d", frameBase.Register)
		}
		return Location{RegisterName: name, Offset: decoded.offset + frameBase.Offset, IsReference: true}, nil

	case opKindBreg:
		name, ok := cfg.registerName(decoded.reg)
		if !ok {
			return Location{}, errf(OutOfRange, "no register name for architecture register %d", decoded.reg)
		}
		return Location{RegisterName: name, Offset: decoded.offset, IsReference: true}, nil

	case opKindReg:
		name, ok := cfg.registerName(decoded.reg)
		if !ok {
			return Location{}, errf(OutOfRange, "no register name for architecture register %d", decoded.reg)
		}
		return Location{RegisterName: name, IsReference: false}, nil

	default:
		return Location{}, errf(NotSupported, "unsupported location expression opcode for %q", varName)
	}
}
