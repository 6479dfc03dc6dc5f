package resolver

import (
	"debug/dwarf"
	"io"
)

// FindProbes implements component G: resolves a ProbeRequest against the
// DWARF data in f into one or more concrete ProbeResults, dispatching by
// selector shape per spec §4.8.
func FindProbes(f *DwarfFile, cfg *Config, req ProbeRequest) ([]ProbeResult, error) {
	cus, err := f.allCUs()
	if err != nil {
		return nil, err
	}
	cursor := newDieCursor(f.Data())

	var results []ProbeResult
	maxN := cfg.maxProbes()
	emit := func(r ProbeResult) error {
		if len(results) >= maxN {
			return errf(OutOfRange, "max_probes (%d) exceeded", maxN)
		}
		results = append(results, r)
		return nil
	}

	sel := req.Selector
	switch {
	case sel.LazyPattern != "" && sel.Function == "":
		err = findProbesLazy(f, cfg, cursor, cus, sel, req.Args, emit)
	case sel.HasAbsLine:
		err = findProbesByLine(f, cfg, cursor, cus, sel.SourceFile, sel.AbsoluteLine, req.Args, nil, emit)
	case sel.Function != "":
		err = findProbesByFunction(f, cfg, cursor, cus, sel, req.Args, emit)
	default:
		err = errf(Invalid, "probe selector has neither function, line, nor lazy pattern")
	}
	return results, err
}

// buildProbeResult implements spec §4.6: resolves the frame base once for
// containingSP at pc, then runs §4.7 for every requested argument.
func buildProbeResult(f *DwarfFile, cfg *Config, cursor *dieCursor, cu, containingSP *dwarf.Entry, pc uint64, args []ArgSpec) (ProbeResult, error) {
	lowPC, ok := entryLowPC(containingSP)
	if !ok {
		ranges, err := entryRanges(f.Data(), containingSP)
		if err != nil {
			return ProbeResult{}, err
		}
		if len(ranges) == 0 {
			return ProbeResult{}, errf(NotFound, "subprogram has no known address")
		}
		lowPC = ranges[0][0]
	}
	symbol, _ := containingSP.Val(dwarf.AttrName).(string)

	frameBase, err := resolveFrameBase(f, containingSP, pc)
	if err != nil {
		return ProbeResult{}, err
	}

	result := ProbeResult{Symbol: symbol, Offset: pc - lowPC}
	for _, spec := range args {
		arg, err := resolveArg(f, cfg, cursor, cu, containingSP, pc, frameBase, spec)
		if err != nil {
			return ProbeResult{}, err
		}
		result.Args = append(result.Args, arg)
	}
	return result, nil
}

// instanceEntryPC returns an inlined-subroutine instance's entry address.
func instanceEntryPC(data *dwarf.Data, inst *dwarf.Entry) (uint64, bool) {
	if pc, ok := entryLowPC(inst); ok {
		return pc, true
	}
	ranges, err := entryRanges(data, inst)
	if err != nil || len(ranges) == 0 {
		return 0, false
	}
	return ranges[0][0], true
}

// forEachChild visits parent's direct children until visit returns
// stop=true or an error.
func forEachChild(cursor *dieCursor, parent *dwarf.Entry, visit func(*dwarf.Entry) (bool, error)) error {
	child, err := cursor.firstChild(parent)
	if err != nil {
		return err
	}
	for child != nil {
		stop, err := visit(child)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		child, err = cursor.nextSibling(child)
		if err != nil {
			return err
		}
	}
	return nil
}

// forEachLineEntry replays cu's line table.
func forEachLineEntry(data *dwarf.Data, cu *dwarf.Entry, visit func(dwarf.LineEntry) error) error {
	lr, err := data.LineReader(cu)
	if err != nil {
		return wrapf(Malformed, err, "read line table")
	}
	if lr == nil {
		return nil
	}
	var le dwarf.LineEntry
	for {
		err := lr.Next(&le)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return wrapf(Malformed, err, "read line table")
		}
		if err := visit(le); err != nil {
			return err
		}
	}
}

// findProbesByFunction implements spec §4.8's "by function" bullet.
func findProbesByFunction(f *DwarfFile, cfg *Config, cursor *dieCursor, cus []*dwarf.Entry, sel Selector, args []ArgSpec, emit func(ProbeResult) error) error {
	for _, cu := range cus {
		err := forEachChild(cursor, cu, func(e *dwarf.Entry) (bool, error) {
			if e.Tag != dwarf.TagSubprogram || !compareName(e, sel.Function) {
				return false, nil
			}

			if isInline(e) {
				instances, err := enumerateInlineInstances(cursor, f.Data(), cu, e)
				if err != nil {
					return true, err
				}
				for _, inst := range instances {
					pc, ok := instanceEntryPC(f.Data(), inst)
					if !ok {
						continue
					}
					containingSP, err := findSubprogramByPC(cursor, f.Data(), cu, pc)
					if err != nil {
						return true, err
					}
					if containingSP == nil {
						continue
					}
					res, err := buildProbeResult(f, cfg, cursor, cu, containingSP, pc, args)
					if err != nil {
						return true, err
					}
					if err := emit(res); err != nil {
						return true, err
					}
				}
				return false, nil
			}

			lowPC, ok := entryLowPC(e)
			if !ok {
				return false, nil
			}

			switch {
			case sel.HasByteOffset:
				highPC, _ := functionHighPC(f.Data(), e, lowPC)
				code, err := f.CodeAt(lowPC, highPC-lowPC)
				if err != nil {
					return true, err
				}
				okBoundary, err := instructionBoundaryOK(code, sel.ByteOffset)
				if err != nil {
					return true, err
				}
				if !okBoundary {
					return true, errf(Invalid, "byte_offset %d does not start an instruction in %q", sel.ByteOffset, sel.Function)
				}
				res, err := buildProbeResult(f, cfg, cursor, cu, e, lowPC+sel.ByteOffset, args)
				if err != nil {
					return true, err
				}
				return true, emit(res)

			case sel.HasRelLine:
				absLine := declLine(e) + sel.RelativeLine
				file := declFile(f.Data(), cu, e)
				return false, findProbesByLine(f, cfg, cursor, []*dwarf.Entry{cu}, file, absLine, args, e, emit)

			case sel.LazyPattern != "":
				file := declFile(f.Data(), cu, e)
				scopedSel := Selector{SourceFile: file, LazyPattern: sel.LazyPattern, Function: sel.Function}
				return false, findProbesLazyScoped(f, cfg, cursor, cu, e, scopedSel, args, emit)

			default:
				res, err := buildProbeResult(f, cfg, cursor, cu, e, lowPC, args)
				if err != nil {
					return true, err
				}
				return false, emit(res)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// functionHighPC resolves the end of a subprogram's PC range, used to
// bound the code slice disassembled for component L.
func functionHighPC(data *dwarf.Data, sp *dwarf.Entry, lowPC uint64) (uint64, error) {
	ranges, err := entryRanges(data, sp)
	if err != nil {
		return 0, err
	}
	high := lowPC
	for _, r := range ranges {
		if r[1] > high {
			high = r[1]
		}
	}
	if high == lowPC {
		// No usable range data; fall back to a generous window so
		// instruction-boundary replay has room to work with.
		high = lowPC + 4096
	}
	return high, nil
}

// findProbesByLine implements spec §4.8's "by file+line" bullet. When
// scopeSP is non-nil the search is restricted to that subprogram's PC
// ranges, as used by the by-function :rel_line delegation.
func findProbesByLine(f *DwarfFile, cfg *Config, cursor *dieCursor, cus []*dwarf.Entry, file string, line int, args []ArgSpec, scopeSP *dwarf.Entry, emit func(ProbeResult) error) error {
	for _, cu := range cus {
		err := forEachLineEntry(f.Data(), cu, func(le dwarf.LineEntry) error {
			if le.EndSequence || le.File == nil || le.Line != line {
				return nil
			}
			if !strtailcmp(le.File.Name, file) {
				return nil
			}
			containingSP := scopeSP
			if containingSP != nil {
				has, err := entryHasPC(f.Data(), scopeSP, le.Address)
				if err != nil {
					return err
				}
				if !has {
					return nil
				}
			} else {
				sp, err := findSubprogramByPC(cursor, f.Data(), cu, le.Address)
				if err != nil {
					return err
				}
				if sp == nil {
					return nil
				}
				containingSP = sp
			}
			res, err := buildProbeResult(f, cfg, cursor, cu, containingSP, le.Address, args)
			if err != nil {
				return err
			}
			return emit(res)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// findProbesLazy implements spec §4.8's "by lazy pattern" bullet at
// whole-request scope (no enclosing function named in the selector).
func findProbesLazy(f *DwarfFile, cfg *Config, cursor *dieCursor, cus []*dwarf.Entry, sel Selector, args []ArgSpec, emit func(ProbeResult) error) error {
	for _, cu := range cus {
		if err := findProbesLazyScoped(f, cfg, cursor, cu, nil, sel, args, emit); err != nil {
			return err
		}
	}
	return nil
}

// findProbesLazyScoped is findProbesLazy narrowed to one CU and,
// optionally, one subprogram (the by-function delegation case).
func findProbesLazyScoped(f *DwarfFile, cfg *Config, cursor *dieCursor, cu, scopeSP *dwarf.Entry, sel Selector, args []ArgSpec, emit func(ProbeResult) error) error {
	resolvedPath, err := resolveSourcePath(sel.SourceFile, cfg.sourcePrefix())
	if err != nil {
		return err
	}
	lineSet, err := findLazyMatchLines(resolvedPath, sel.LazyPattern)
	if err != nil {
		return err
	}

	return forEachLineEntry(f.Data(), cu, func(le dwarf.LineEntry) error {
		if le.EndSequence || le.File == nil || !lineSet.Contains(le.Line) {
			return nil
		}
		if !strtailcmp(le.File.Name, sel.SourceFile) {
			return nil
		}

		containingSP := scopeSP
		if containingSP != nil {
			has, err := entryHasPC(f.Data(), scopeSP, le.Address)
			if err != nil {
				return err
			}
			if !has {
				return nil
			}
			inst, err := findInlineInstance(cursor, f.Data(), scopeSP, le.Address)
			if err != nil {
				return err
			}
			if inst != nil {
				// A deeper inline instance already covers this
				// address; avoid double-emitting for the sibling.
				return nil
			}
		} else {
			sp, err := findSubprogramByPC(cursor, f.Data(), cu, le.Address)
			if err != nil {
				return err
			}
			if sp == nil {
				return nil
			}
			containingSP = sp
		}

		res, err := buildProbeResult(f, cfg, cursor, cu, containingSP, le.Address, args)
		if err != nil {
			return err
		}
		return emit(res)
	})
}
