package resolver

import (
	"debug/dwarf"
	"strconv"
	"strings"
)

// isCIdentifierExpr reports whether expr looks like a plain C variable
// reference rather than a passthrough token ($retval, %reg, @symbol, a
// bare number, ...).
func isCIdentifierExpr(expr string) bool {
	if expr == "" {
		return false
	}
	for i, r := range expr {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isAlpha {
				return false
			}
			continue
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// synthesizeArgName builds the default display name for an ArgSpec per
// spec §4.7 step 1: the expression plus its field chain, with ':'
// rewritten to '_'.
func synthesizeArgName(spec ArgSpec) string {
	var b strings.Builder
	b.WriteString(spec.Expression)
	for _, step := range spec.Fields {
		switch {
		case step.IsIndex:
			b.WriteByte('_')
			b.WriteString(strconv.Itoa(step.Index))
		default:
			b.WriteByte('_')
			b.WriteString(step.Name)
		}
	}
	return strings.ReplaceAll(b.String(), ":", "_")
}

// resolveArg implements spec §4.7 for one ArgSpec evaluated at pc within
// subprogram sp (lexically, cu's innermost scope containing pc), with
// sp's already-resolved frame base.
func resolveArg(f *DwarfFile, cfg *Config, cursor *dieCursor, cu, sp *dwarf.Entry, pc uint64, frameBase FrameBase, spec ArgSpec) (TraceArg, error) {
	name := spec.DisplayName
	if name == "" {
		name = synthesizeArgName(spec)
	}

	if !isCIdentifierExpr(spec.Expression) {
		return TraceArg{Name: name, Value: spec.Expression, TypeTag: spec.TypeCast}, nil
	}

	die, err := findVariableInScope(cursor, f.Data(), sp, cu, pc, spec.Expression)
	if err != nil {
		return TraceArg{}, err
	}
	if die == nil {
		return TraceArg{}, errf(NotFound, "no variable or parameter named %q in scope", spec.Expression)
	}

	baseType := dieType(f.Data(), die)
	loc, err := resolveLocation(f, cfg, die, spec.Expression, pc, frameBase)
	if err != nil {
		return TraceArg{}, err
	}

	var frames []int64
	finalType := baseType
	if len(spec.Fields) > 0 {
		frames, finalType, err = walkFields(baseType, loc, spec.Fields)
		if err != nil {
			return TraceArg{}, err
		}
		// walkFields lists frames in application order; TraceArg wants the
		// outermost frame first.
		for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
			frames[i], frames[j] = frames[j], frames[i]
		}
	} else if loc.IsReference {
		frames = []int64{loc.Offset}
	}

	var value string
	if loc.IsGlobal {
		value = "@" + loc.GlobalName
	} else {
		value = loc.RegisterName
	}

	tag := spec.TypeCast
	if tag == "" && finalType != nil {
		t, clamped, ok := typeTag(finalType)
		if ok {
			tag = t
			if clamped {
				cfg.logger().Warnf("clamping %q's %d-bit type to 64 bits", name, byteSize(resolveType(finalType))*8)
			}
		}
	}

	return TraceArg{Name: name, Value: value, Indirections: frames, TypeTag: tag}, nil
}

// findVariableInScope implements spec §4.7 step 3: search sp's local
// variables and parameters in DIE order, descending into each lexical
// block that contains pc as it is reached, then widen to the compilation
// unit's own variables. The first match wins, so a variable in a nested
// block is found ahead of a same-named outer one only when its block comes
// first in DIE order.
func findVariableInScope(cursor *dieCursor, data *dwarf.Data, sp, cu *dwarf.Entry, pc uint64, name string) (*dwarf.Entry, error) {
	die, err := searchLexicalScope(cursor, data, sp, pc, name)
	if err != nil || die != nil {
		return die, err
	}
	return findVariableOrParameter(cursor, cu, name)
}

func searchLexicalScope(cursor *dieCursor, data *dwarf.Data, scope *dwarf.Entry, pc uint64, name string) (*dwarf.Entry, error) {
	child, err := cursor.firstChild(scope)
	if err != nil {
		return nil, err
	}
	for child != nil {
		if child.Tag == dwarf.TagLexDwarfBlock {
			has, err := entryHasPC(data, child, pc)
			if err != nil {
				return nil, err
			}
			if has {
				found, err := searchLexicalScope(cursor, data, child, pc, name)
				if err != nil {
					return nil, err
				}
				if found != nil {
					return found, nil
				}
			}
		}
		if (child.Tag == dwarf.TagVariable || child.Tag == dwarf.TagFormalParameter) && compareName(child, name) {
			return child, nil
		}
		child, err = cursor.nextSibling(child)
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}
