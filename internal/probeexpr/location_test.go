package probeexpr

import "testing"

func TestParseLocationExprSingleLine(t *testing.T) {
	l, err := ParseLocationExpr("@kernel/sched/core.c:4521")
	if err != nil {
		t.Fatalf("ParseLocationExpr: %v", err)
	}
	if l.File != "kernel/sched/core.c" || l.Line != 4521 || l.HasRange {
		t.Errorf("got %+v", l)
	}
}

func TestParseLocationExprRange(t *testing.T) {
	l, err := ParseLocationExpr("@kernel/sched/core.c:[100,120]")
	if err != nil {
		t.Fatalf("ParseLocationExpr: %v", err)
	}
	if l.File != "kernel/sched/core.c" || l.Line != 100 || !l.HasRange || l.RangeEnd != 120 {
		t.Errorf("got %+v", l)
	}
}

func TestParseLocationExprMissingAt(t *testing.T) {
	if _, err := ParseLocationExpr("kernel/sched/core.c:42"); err == nil {
		t.Fatalf("expected an error for a location expression missing '@'")
	}
}

func TestParseLocationExprToLineRangeRequest(t *testing.T) {
	l, err := ParseLocationExpr("@core.c:[10,20]")
	if err != nil {
		t.Fatalf("ParseLocationExpr: %v", err)
	}
	req := l.ToLineRangeRequest()
	if req.File != "core.c" || req.Start != 10 || req.End != 20 {
		t.Errorf("got %+v", req)
	}
}

func TestParseDataList(t *testing.T) {
	args, err := ParseDataList("(rq,rq->nr_running)")
	if err != nil {
		t.Fatalf("ParseDataList: %v", err)
	}
	if len(args) != 2 || args[0].Expression != "rq" || args[1].Expression != "rq" {
		t.Fatalf("got %+v", args)
	}
	if len(args[1].Fields) != 1 || args[1].Fields[0].Name != "nr_running" {
		t.Errorf("second arg fields = %+v", args[1].Fields)
	}
}
