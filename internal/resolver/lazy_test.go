package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStripWhitespace(t *testing.T) {
	if got := stripWhitespace("  rq = cpu_rq( cpu )\t\n"); got != "rq=cpu_rq(cpu)" {
		t.Errorf("stripWhitespace = %q", got)
	}
}

func TestMatchLazyLine(t *testing.T) {
	ok, err := matchLazyLine("rq=cpu_rq*", "  rq = cpu_rq(cpu);")
	if err != nil {
		t.Fatalf("matchLazyLine error: %v", err)
	}
	if !ok {
		t.Errorf("expected pattern to match")
	}

	ok, err = matchLazyLine("rq=cpu_rq*", "return 0;")
	if err != nil {
		t.Fatalf("matchLazyLine error: %v", err)
	}
	if ok {
		t.Errorf("did not expect pattern to match")
	}
}

func TestFindLazyMatchLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sched.c")
	content := "int schedule(void) {\n\trq = cpu_rq(cpu);\n\treturn 0;\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	lines, err := findLazyMatchLines(path, "rq=cpu_rq*")
	if err != nil {
		t.Fatalf("findLazyMatchLines: %v", err)
	}
	if !lines.Contains(2) {
		t.Errorf("expected line 2 to match, got %v", lines.Lines())
	}
	if lines.Len() != 1 {
		t.Errorf("expected exactly one match, got %v", lines.Lines())
	}
}
