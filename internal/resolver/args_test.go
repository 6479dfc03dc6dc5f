package resolver

import "testing"

func TestIsCIdentifierExpr(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"rq", true},
		{"_pid", true},
		{"nr_running2", true},
		{"$retval", false},
		{"%di", false},
		{"@jiffies", false},
		{"2nd", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isCIdentifierExpr(c.in); got != c.want {
			t.Errorf("isCIdentifierExpr(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSynthesizeArgName(t *testing.T) {
	cases := []struct {
		spec ArgSpec
		want string
	}{
		{ArgSpec{Expression: "rq"}, "rq"},
		{ArgSpec{Expression: "rq", Fields: []FieldStep{{Name: "nr_running", IsDereference: true}}}, "rq_nr_running"},
		{ArgSpec{Expression: "task", Fields: []FieldStep{{IsIndex: true, Index: 2}}}, "task_2"},
	}
	for _, c := range cases {
		if got := synthesizeArgName(c.spec); got != c.want {
			t.Errorf("synthesizeArgName(%+v) = %q, want %q", c.spec, got, c.want)
		}
	}
}
