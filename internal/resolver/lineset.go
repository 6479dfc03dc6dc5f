package resolver

// AddResult reports what LineSet.Add did, mirroring the three-way
// {added, already_present, oom} outcome from spec §4.1. Go's slice growth
// never fails in a way we can observe, so oom never occurs in practice;
// it stays in the enum so callers written against spec §4.1 compile
// against the full outcome set.
type AddResult int

const (
	Added AddResult = iota
	AlreadyPresent
	OutOfMemoryResult
)

// LineSet is an ordered, deduplicated set of source line numbers.
// Grounded on the teacher's list-based line cache (func_expr/dump lazy
// pattern caches) and directly on the original probe-finder.c
// line_list__add_line: callers produce lines in mostly-increasing order,
// so Add searches from the tail.
type LineSet struct {
	lines []int
}

// NewLineSet returns an empty LineSet.
func NewLineSet() *LineSet {
	return &LineSet{}
}

// Add inserts line, preserving ascending order, and reports whether it was
// newly added.
func (s *LineSet) Add(line int) AddResult {
	i := len(s.lines) - 1
	for ; i >= 0; i-- {
		if s.lines[i] < line {
			break
		}
		if s.lines[i] == line {
			return AlreadyPresent
		}
	}
	s.lines = append(s.lines, 0)
	copy(s.lines[i+2:], s.lines[i+1:])
	s.lines[i+1] = line
	return Added
}

// Contains reports whether line is present.
func (s *LineSet) Contains(line int) bool {
	for _, l := range s.lines {
		if l == line {
			return true
		}
	}
	return false
}

// Clear empties the set without releasing its backing array, so a locator
// can reuse one LineSet across probe requests (§5's "the line cache is
// cleared before a new ProbeRequest").
func (s *LineSet) Clear() {
	s.lines = s.lines[:0]
}

// Lines returns the ascending line numbers currently held. The returned
// slice aliases internal storage and must not be mutated by the caller.
func (s *LineSet) Lines() []int {
	return s.lines
}

// Len reports how many distinct lines are in the set.
func (s *LineSet) Len() int {
	return len(s.lines)
}
