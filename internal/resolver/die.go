package resolver

import "debug/dwarf"

// FindResult is the four-valued predicate outcome from spec §4.2/§9,
// replacing the original's bit-flag callback return with a tagged
// variant so the two independent decisions (descend? continue siblings?)
// can't be expressed inconsistently.
type FindResult int

const (
	// Found stops the search; the current entry is the answer.
	Found FindResult = iota
	// DescendOnly searches this entry's children only; if nothing is
	// found there, the search does not continue to this entry's
	// siblings.
	DescendOnly
	// SkipChildren does not descend into this entry's children, but
	// continues to its next sibling.
	SkipChildren
	// Continue searches this entry's children, and if nothing is found
	// there, continues to its next sibling.
	Continue
)

// dieCursor gives random-access re-entrant traversal over one CU's DIE
// tree by Seek()ing to a known offset before every read, so a recursive
// walk never has to reason about a shared read position the way a single
// linear debug/dwarf.Reader normally requires.
type dieCursor struct {
	data *dwarf.Data
	r    *dwarf.Reader
}

func newDieCursor(data *dwarf.Data) *dieCursor {
	return &dieCursor{data: data, r: data.Reader()}
}

func (c *dieCursor) entryAt(off dwarf.Offset) (*dwarf.Entry, error) {
	c.r.Seek(off)
	return c.r.Next()
}

// firstChild returns root's first child DIE, or nil if root has none.
func (c *dieCursor) firstChild(root *dwarf.Entry) (*dwarf.Entry, error) {
	if !root.Children {
		return nil, nil
	}
	if _, err := c.entryAt(root.Offset); err != nil {
		return nil, err
	}
	child, err := c.r.Next()
	if err != nil {
		return nil, err
	}
	if child == nil || child.Tag == 0 {
		return nil, nil
	}
	return child, nil
}

// nextSibling returns e's next sibling DIE at the same depth, or nil at
// the end of the sibling chain.
func (c *dieCursor) nextSibling(e *dwarf.Entry) (*dwarf.Entry, error) {
	if _, err := c.entryAt(e.Offset); err != nil {
		return nil, err
	}
	if e.Children {
		c.r.SkipChildren()
	}
	sib, err := c.r.Next()
	if err != nil {
		return nil, err
	}
	if sib == nil || sib.Tag == 0 {
		return nil, nil
	}
	return sib, nil
}

// findChild performs the recursive DFS of spec §4.2, predicate-pruned.
func (c *dieCursor) findChild(root *dwarf.Entry, predicate func(*dwarf.Entry) FindResult) (*dwarf.Entry, error) {
	child, err := c.firstChild(root)
	if err != nil {
		return nil, err
	}
	for child != nil {
		res := predicate(child)
		if res == Found {
			return child, nil
		}
		if res == DescendOnly || res == Continue {
			found, err := c.findChild(child, predicate)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
			if res == DescendOnly {
				return nil, nil
			}
		} else if res == SkipChildren {
			// nothing to do: we never descended.
		}
		if res == SkipChildren || res == Continue {
			child, err = c.nextSibling(child)
			if err != nil {
				return nil, err
			}
			continue
		}
		return nil, nil
	}
	return nil, nil
}

// compareName reports whether die's DW_AT_name equals expected. A nameless
// DIE never matches.
func compareName(die *dwarf.Entry, expected string) bool {
	name, ok := die.Val(dwarf.AttrName).(string)
	return ok && name == expected
}

// resolveType follows DW_AT_type through const/restrict/volatile/shared
// qualifiers and typedefs until it reaches a non-qualifier type, per
// spec §4.2. Go's debug/dwarf resolves the full type graph but does not
// collapse typedef/qualifier wrapper nodes itself; this loop is that
// missing step (die_get_real_type in the original).
func resolveType(t dwarf.Type) dwarf.Type {
	for {
		switch tt := t.(type) {
		case *dwarf.TypedefType:
			if tt.Type == nil {
				return t
			}
			t = tt.Type
		case *dwarf.QualType:
			if tt.Type == nil {
				return t
			}
			t = tt.Type
		default:
			return t
		}
	}
}

// dieType resolves the DW_AT_type of die into a dwarf.Type, or nil if the
// attribute is missing or the chain is broken.
func dieType(data *dwarf.Data, die *dwarf.Entry) dwarf.Type {
	off, ok := die.Val(dwarf.AttrType).(dwarf.Offset)
	if !ok {
		return nil
	}
	t, err := data.Type(off)
	if err != nil {
		return nil
	}
	return t
}

// byteSize returns DW_AT_byte_size for t, 0 if absent.
func byteSize(t dwarf.Type) uint64 {
	if t == nil {
		return 0
	}
	sz := t.Common().ByteSize
	if sz < 0 {
		return 0
	}
	return uint64(sz)
}

// isSignedType reports whether t is a signed integer/char type per
// DW_AT_encoding, mirroring die_is_signed_type.
func isSignedType(t dwarf.Type) bool {
	switch t.(type) {
	case *dwarf.IntType, *dwarf.CharType:
		return true
	default:
		return false
	}
}

// entryRanges resolves the PC ranges covered by die (handling both
// DW_AT_low_pc/high_pc and DW_AT_ranges), equivalent to dwarf_haspc's
// backing data.
func entryRanges(data *dwarf.Data, die *dwarf.Entry) ([][2]uint64, error) {
	return data.Ranges(die)
}

// entryHasPC reports whether die's PC ranges include pc.
func entryHasPC(data *dwarf.Data, die *dwarf.Entry, pc uint64) (bool, error) {
	ranges, err := entryRanges(data, die)
	if err != nil {
		return false, err
	}
	for _, r := range ranges {
		if pc >= r[0] && pc < r[1] {
			return true, nil
		}
	}
	return false, nil
}

// entryLowPC returns DW_AT_low_pc, and false if absent.
func entryLowPC(die *dwarf.Entry) (uint64, bool) {
	v, ok := die.Val(dwarf.AttrLowpc).(uint64)
	return v, ok
}

// findSubprogramByPC scans cu's direct subprogram children for the first
// one whose PC ranges include pc (die_find_real_subprogram).
func findSubprogramByPC(cursor *dieCursor, data *dwarf.Data, cu *dwarf.Entry, pc uint64) (*dwarf.Entry, error) {
	var result *dwarf.Entry
	_, err := cursor.findChild(cu, func(e *dwarf.Entry) FindResult {
		if e.Tag != dwarf.TagSubprogram {
			return SkipChildren
		}
		has, err := entryHasPC(data, e, pc)
		if err != nil || !has {
			return SkipChildren
		}
		result = e
		return Found
	})
	return result, err
}

// findInlineInstance searches sp's subtree for a DW_TAG_inlined_subroutine
// whose ranges include pc (die_find_inlinefunc).
func findInlineInstance(cursor *dieCursor, data *dwarf.Data, sp *dwarf.Entry, pc uint64) (*dwarf.Entry, error) {
	return cursor.findChild(sp, func(e *dwarf.Entry) FindResult {
		if e.Tag == dwarf.TagInlinedSubroutine {
			has, err := entryHasPC(data, e, pc)
			if err == nil && has {
				return Found
			}
		}
		return Continue
	})
}

// findVariableOrParameter searches sp's direct children for a
// DW_TAG_variable or DW_TAG_formal_parameter named name.
func findVariableOrParameter(cursor *dieCursor, sp *dwarf.Entry, name string) (*dwarf.Entry, error) {
	return cursor.findChild(sp, func(e *dwarf.Entry) FindResult {
		if (e.Tag == dwarf.TagVariable || e.Tag == dwarf.TagFormalParameter) && compareName(e, name) {
			return Found
		}
		return SkipChildren
	})
}

// findMember searches a structure/union DIE's direct children for a
// DW_TAG_member named name.
func findMember(cursor *dieCursor, structDie *dwarf.Entry, name string) (*dwarf.Entry, error) {
	return cursor.findChild(structDie, func(e *dwarf.Entry) FindResult {
		if e.Tag == dwarf.TagMember && compareName(e, name) {
			return Found
		}
		return SkipChildren
	})
}

// enumerateInlineInstances collects every DW_TAG_inlined_subroutine whose
// DW_AT_abstract_origin resolves to sp, anywhere within cu. This is the
// Go-native replacement for dwarf_func_inline_instances, which elfutils
// implements as a CU-wide callback rather than a bounded child search.
func enumerateInlineInstances(cursor *dieCursor, data *dwarf.Data, cu, sp *dwarf.Entry) ([]*dwarf.Entry, error) {
	var out []*dwarf.Entry
	var walk func(e *dwarf.Entry) error
	walk = func(e *dwarf.Entry) error {
		child, err := cursor.firstChild(e)
		if err != nil {
			return err
		}
		for child != nil {
			if child.Tag == dwarf.TagInlinedSubroutine {
				if origin, ok := child.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset); ok && origin == sp.Offset {
					out = append(out, child)
				}
			}
			if child.Children {
				if err := walk(child); err != nil {
					return err
				}
			}
			child, err = cursor.nextSibling(child)
			if err != nil {
				return err
			}
		}
		return nil
	}
	err := walk(cu)
	return out, err
}

// isInline reports whether sp is an inline-only subprogram abstract
// instance (DW_AT_inline present and non-zero, no PC ranges of its own).
func isInline(sp *dwarf.Entry) bool {
	v := sp.Val(dwarf.AttrInline)
	switch vv := v.(type) {
	case int64:
		return vv != 0
	case uint64:
		return vv != 0
	default:
		return false
	}
}

// declLine returns DW_AT_decl_line, 0 if absent.
func declLine(die *dwarf.Entry) int {
	if v, ok := die.Val(dwarf.AttrDeclLine).(int64); ok {
		return int(v)
	}
	return 0
}

// declFile returns the source file DW_AT_decl_file names, resolved
// through the CU's line table file list, or "" if unavailable.
func declFile(data *dwarf.Data, cu *dwarf.Entry, die *dwarf.Entry) string {
	idx, ok := die.Val(dwarf.AttrDeclFile).(int64)
	if !ok {
		return ""
	}
	lr, err := data.LineReader(cu)
	if err != nil || lr == nil {
		return ""
	}
	files := lr.Files()
	if idx < 0 || int(idx) >= len(files) || files[idx] == nil {
		return ""
	}
	return files[idx].Name
}
