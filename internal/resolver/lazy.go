package resolver

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// stripWhitespace removes all whitespace, matching the original's
// whitespace-insensitive lazy-pattern comparison: indentation and
// formatting differences between the pattern and the source line must
// not defeat a match.
func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchLazyLine reports whether line's whitespace-stripped content
// matches pattern's whitespace-stripped content under glob semantics
// (path.Match's '*', '?', '[...]').
func matchLazyLine(pattern, line string) (bool, error) {
	ok, err := path.Match(stripWhitespace(pattern), stripWhitespace(line))
	if err != nil {
		return false, wrapf(Invalid, err, "lazy pattern %q", pattern)
	}
	return ok, nil
}

// findLazyMatchLines implements component F: read sourcePath and return
// every 1-based line number whose content matches pattern.
func findLazyMatchLines(sourcePath, pattern string) (*LineSet, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, wrapf(IO, err, "open source file %s", sourcePath)
	}
	defer f.Close()

	lines := NewLineSet()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		ok, err := matchLazyLine(pattern, scanner.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			lines.Add(lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapf(IO, err, "read source file %s", sourcePath)
	}
	return lines, nil
}
