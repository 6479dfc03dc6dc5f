package probeexpr

import "testing"

func TestParseProbeExprBareFunction(t *testing.T) {
	e, err := ParseProbeExpr("schedule")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	if e.Name != "schedule" || len(e.Datas) != 0 {
		t.Errorf("got %+v", e)
	}
}

func TestParseProbeExprWithArgs(t *testing.T) {
	e, err := ParseProbeExpr("tcp_v4_rcv(skb,skb->len)")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	if e.Name != "tcp_v4_rcv" || len(e.Datas) != 2 {
		t.Fatalf("got %+v", e)
	}
	if e.Datas[0].Name != "skb" || len(e.Datas[0].Fields) != 0 {
		t.Errorf("first arg = %+v", e.Datas[0])
	}
	if e.Datas[1].Name != "skb" || len(e.Datas[1].Fields) != 1 || e.Datas[1].Fields[0].Head != "len" {
		t.Errorf("second arg = %+v", e.Datas[1])
	}
}

func TestParseProbeExprFieldChainWithIndex(t *testing.T) {
	e, err := ParseProbeExpr("foo(task->group.members[2])")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	req, err := e.ToProbeRequest()
	if err != nil {
		t.Fatalf("ToProbeRequest: %v", err)
	}
	arg := req.Args[0]
	if arg.Expression != "task" {
		t.Fatalf("Expression = %q", arg.Expression)
	}
	if len(arg.Fields) != 3 {
		t.Fatalf("Fields = %+v", arg.Fields)
	}
	if !arg.Fields[0].IsDereference || arg.Fields[0].Name != "group" {
		t.Errorf("Fields[0] = %+v", arg.Fields[0])
	}
	if arg.Fields[1].IsDereference || arg.Fields[1].Name != "members" {
		t.Errorf("Fields[1] = %+v", arg.Fields[1])
	}
	if !arg.Fields[2].IsIndex || arg.Fields[2].Index != 2 {
		t.Errorf("Fields[2] = %+v", arg.Fields[2])
	}
}

func TestParseProbeExprByteOffsetSelector(t *testing.T) {
	e, err := ParseProbeExpr("schedule+16")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	req, err := e.ToProbeRequest()
	if err != nil {
		t.Fatalf("ToProbeRequest: %v", err)
	}
	if !req.Selector.HasByteOffset || req.Selector.ByteOffset != 16 {
		t.Errorf("selector = %+v", req.Selector)
	}
}

func TestParseProbeExprRelativeLineSelector(t *testing.T) {
	e, err := ParseProbeExpr("schedule:3")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	req, err := e.ToProbeRequest()
	if err != nil {
		t.Fatalf("ToProbeRequest: %v", err)
	}
	if !req.Selector.HasRelLine || req.Selector.RelativeLine != 3 {
		t.Errorf("selector = %+v", req.Selector)
	}
}

func TestParseProbeExprReturnSelector(t *testing.T) {
	e, err := ParseProbeExpr("schedule%return%")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	if !e.IsReturn || e.LazyPattern != "" {
		t.Errorf("got %+v, want IsReturn=true and no lazy pattern", e)
	}

	bare, err := ParseProbeExpr("schedule")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	if bare.IsReturn {
		t.Errorf("bare function should not default to a return probe")
	}
}

func TestParseProbeExprLazyPattern(t *testing.T) {
	e, err := ParseProbeExpr("schedule%rq=cpu_rq*%(rq)")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	if e.LazyPattern != "rq=cpu_rq*" {
		t.Errorf("LazyPattern = %q", e.LazyPattern)
	}
	req, err := e.ToProbeRequest()
	if err != nil {
		t.Fatalf("ToProbeRequest: %v", err)
	}
	if req.Selector.LazyPattern != "rq=cpu_rq*" {
		t.Errorf("selector = %+v", req.Selector)
	}
}

func TestParseProbeExprShowString(t *testing.T) {
	e, err := ParseProbeExpr("foo(name:str)")
	if err != nil {
		t.Fatalf("ParseProbeExpr: %v", err)
	}
	req, err := e.ToProbeRequest()
	if err != nil {
		t.Fatalf("ToProbeRequest: %v", err)
	}
	if req.Args[0].TypeCast != "string" {
		t.Errorf("TypeCast = %q, want string", req.Args[0].TypeCast)
	}
}

func TestExprStringRoundTrip(t *testing.T) {
	cases := []string{
		"schedule",
		"tcp_v4_rcv(skb,skb->len)",
	}
	for _, in := range cases {
		e, err := ParseProbeExpr(in)
		if err != nil {
			t.Fatalf("ParseProbeExpr(%q): %v", in, err)
		}
		out := e.String()
		e2, err := ParseProbeExpr(out)
		if err != nil {
			t.Fatalf("re-parsing rendered form %q: %v", out, err)
		}
		if e2.Name != e.Name || len(e2.Datas) != len(e.Datas) {
			t.Errorf("round trip mismatch: %q -> %q", in, out)
		}
	}
}
