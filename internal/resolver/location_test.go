package resolver

import (
	"encoding/binary"
	"testing"
)

func littleEndianOrder() elfByteOrder { return elfByteOrder{littleEndian: true} }

func TestDecodeTopOpAddr(t *testing.T) {
	expr := make([]byte, 9)
	expr[0] = opAddr
	binary.LittleEndian.PutUint64(expr[1:], 0xffffffff81000000)
	got, ok := decodeTopOp(expr, 8, littleEndianOrder())
	if !ok {
		t.Fatalf("decodeTopOp failed")
	}
	if got.kind != opKindAddr || got.addr != 0xffffffff81000000 {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeTopOpFbreg(t *testing.T) {
	expr := []byte{opFbreg, 0x7c} // SLEB128 -4
	got, ok := decodeTopOp(expr, 8, littleEndianOrder())
	if !ok {
		t.Fatalf("decodeTopOp failed")
	}
	if got.kind != opKindFbreg || got.offset != -4 {
		t.Errorf("got %+v, want offset -4", got)
	}
}

func TestDecodeTopOpBreg(t *testing.T) {
	expr := []byte{opBreg0 + 6, 0x08} // DW_OP_breg6 (rbp), SLEB128 8
	got, ok := decodeTopOp(expr, 8, littleEndianOrder())
	if !ok {
		t.Fatalf("decodeTopOp failed")
	}
	if got.kind != opKindBreg || got.reg != 6 || got.offset != 8 {
		t.Errorf("got %+v, want reg=6 offset=8", got)
	}
}

func TestDecodeTopOpReg(t *testing.T) {
	expr := []byte{opReg0 + 3}
	got, ok := decodeTopOp(expr, 8, littleEndianOrder())
	if !ok {
		t.Fatalf("decodeTopOp failed")
	}
	if got.kind != opKindReg || got.reg != 3 {
		t.Errorf("got %+v, want reg=3", got)
	}
}

func TestDecodeTopOpCFA(t *testing.T) {
	expr := []byte{opCallFrameCFA}
	got, ok := decodeTopOp(expr, 8, littleEndianOrder())
	if !ok {
		t.Fatalf("decodeTopOp failed")
	}
	if got.kind != opKindCFA {
		t.Errorf("got %+v, want opKindCFA", got)
	}
}

func TestDecodeTopOpUnsupported(t *testing.T) {
	expr := []byte{0xa1} // DW_OP_addrx, not in the supported set
	got, ok := decodeTopOp(expr, 8, littleEndianOrder())
	if !ok {
		t.Fatalf("decodeTopOp should still report ok so the caller can classify NotSupported")
	}
	if got.kind != opKindOther {
		t.Errorf("got %+v, want opKindOther", got)
	}
}

func TestDecodeTopOpEmpty(t *testing.T) {
	if _, ok := decodeTopOp(nil, 8, littleEndianOrder()); ok {
		t.Errorf("expected ok=false for empty expression")
	}
}
