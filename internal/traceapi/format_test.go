package traceapi

import (
	"testing"

	"github.com/xixiliguo/probefind/internal/resolver"
)

func TestFormatArgNoIndirection(t *testing.T) {
	arg := resolver.TraceArg{Name: "pid", Value: "di", TypeTag: "s32"}
	if got := FormatArg(arg); got != "pid=di:s32" {
		t.Errorf("FormatArg = %q", got)
	}
}

func TestFormatArgOneIndirection(t *testing.T) {
	arg := resolver.TraceArg{Name: "prio", Value: "di", Indirections: []int64{24}, TypeTag: "s32"}
	if got := FormatArg(arg); got != "prio=+24(di):s32" {
		t.Errorf("FormatArg = %q", got)
	}
}

func TestFormatArgTwoIndirections(t *testing.T) {
	arg := resolver.TraceArg{Name: "nr", Value: "di", Indirections: []int64{0, 8}}
	if got := FormatArg(arg); got != "nr=+0(+8(di))" {
		t.Errorf("FormatArg = %q", got)
	}
}

func TestFormatKprobeEventAndParseRoundTrip(t *testing.T) {
	pr := resolver.ProbeResult{
		Symbol: "schedule",
		Offset: 16,
		Args: []resolver.TraceArg{
			{Name: "rq", Value: "di", Indirections: []int64{0}, TypeTag: "u64"},
		},
	}
	line := FormatKprobeEvent(Kprobe, "probefind", "schedule_probe", pr)
	got, err := ParseKprobeEvent(line)
	if err != nil {
		t.Fatalf("ParseKprobeEvent(%q): %v", line, err)
	}
	if got.Kind != Kprobe || got.Group != "probefind" || got.Event != "schedule_probe" {
		t.Errorf("got %+v", got)
	}
	if got.Symbol != "schedule" || got.Offset != 16 {
		t.Errorf("got symbol/offset = %q/%d", got.Symbol, got.Offset)
	}
	if len(got.Args) != 1 || got.Args[0] != "rq=+0(di):u64" {
		t.Errorf("got args = %v", got.Args)
	}
}

func TestFormatKprobeEventReturnProbeNoOffset(t *testing.T) {
	pr := resolver.ProbeResult{Symbol: "schedule"}
	line := FormatKprobeEvent(Kretprobe, "probefind", "schedule_ret", pr)
	if line != "r:probefind/schedule_ret schedule" {
		t.Errorf("FormatKprobeEvent = %q", line)
	}
}
