package resolver

import "testing"

func TestStrtailcmp(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"/build/kernel/sched.c", "kernel/sched.c", true},
		{"kernel/sched.c", "kernel/sched.c", true},
		{"kernel/sched.c", "mm/slub.c", false},
		{"", "", true},
		{"a.c", "", true},
	}
	for _, c := range cases {
		if got := strtailcmp(c.a, c.b); got != c.want {
			t.Errorf("strtailcmp(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestStripLeadingComponent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a/b/c", "b/c"},
		{"/a/b/c", "b/c"},
		{"c", "c"},
		{"", ""},
	}
	for _, c := range cases {
		if got := stripLeadingComponent(c.in); got != c.want {
			t.Errorf("stripLeadingComponent(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveSourcePathNoPrefixMissing(t *testing.T) {
	if _, err := resolveSourcePath("/nonexistent/path/does/not/exist.c", ""); err == nil {
		t.Fatalf("expected error for unreadable path with no prefix")
	}
}

func TestResolveSourcePathPrefixExhausted(t *testing.T) {
	_, err := resolveSourcePath("kernel/sched.c", "/nonexistent/prefix/root")
	if err == nil {
		t.Fatalf("expected NotFound once the suffix is exhausted")
	}
}
