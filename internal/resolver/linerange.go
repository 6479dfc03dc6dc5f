package resolver

import "debug/dwarf"

// FindLineRange implements component I / spec §4.10.
func FindLineRange(f *DwarfFile, cfg *Config, req LineRangeRequest) (LineRangeResult, error) {
	if req.Function != "" {
		return findLineRangeByFunction(f, cfg, req)
	}
	return findLineRangeByFile(f, cfg, req)
}

func findLineRangeByFunction(f *DwarfFile, cfg *Config, req LineRangeRequest) (LineRangeResult, error) {
	cus, err := f.allCUs()
	if err != nil {
		return LineRangeResult{}, err
	}
	cursor := newDieCursor(f.Data())

	for _, cu := range cus {
		var sp *dwarf.Entry
		err := forEachChild(cursor, cu, func(e *dwarf.Entry) (bool, error) {
			if e.Tag == dwarf.TagSubprogram && compareName(e, req.Function) {
				sp = e
				return true, nil
			}
			return false, nil
		})
		if err != nil {
			return LineRangeResult{}, err
		}
		if sp == nil {
			continue
		}

		declLn := declLine(sp)
		restricted := req.Start != 0 || req.End != 0
		lines := NewLineSet()
		lines.Add(declLn)

		err = forEachLineEntry(f.Data(), cu, func(le dwarf.LineEntry) error {
			if le.EndSequence || le.File == nil {
				return nil
			}
			has, err := entryHasPC(f.Data(), sp, le.Address)
			if err != nil || !has {
				return err
			}
			inst, err := findInlineInstance(cursor, f.Data(), sp, le.Address)
			if err != nil {
				return err
			}
			if inst != nil {
				return nil
			}
			if restricted {
				rel := le.Line - declLn
				if rel < req.Start || rel > req.End {
					return nil
				}
			}
			lines.Add(le.Line)
			return nil
		})
		if err != nil {
			return LineRangeResult{}, err
		}

		file := declFile(f.Data(), cu, sp)
		path, err := resolveSourcePath(file, cfg.sourcePrefix())
		if err != nil {
			return LineRangeResult{}, err
		}
		return LineRangeResult{Found: lines.Len() > 0, Path: path, Lines: lines.Lines()}, nil
	}
	return LineRangeResult{Found: false}, nil
}

func findLineRangeByFile(f *DwarfFile, cfg *Config, req LineRangeRequest) (LineRangeResult, error) {
	cus, err := f.allCUs()
	if err != nil {
		return LineRangeResult{}, err
	}

	lines := NewLineSet()
	for _, cu := range cus {
		err := forEachLineEntry(f.Data(), cu, func(le dwarf.LineEntry) error {
			if le.EndSequence || le.File == nil {
				return nil
			}
			if !strtailcmp(le.File.Name, req.File) {
				return nil
			}
			if le.Line < req.Start || le.Line > req.End {
				return nil
			}
			lines.Add(le.Line)
			return nil
		})
		if err != nil {
			return LineRangeResult{}, err
		}
	}

	path, err := resolveSourcePath(req.File, cfg.sourcePrefix())
	if err != nil {
		return LineRangeResult{}, err
	}
	return LineRangeResult{Found: lines.Len() > 0, Path: path, Lines: lines.Lines()}, nil
}
