package resolver

import (
	"debug/dwarf"
	"io"
)

// ReverseLookup implements component H / spec §4.9: resolve an
// instruction address back to its enclosing function and, where the line
// table has an exact entry for it, source file and line. ok is false when
// no compilation unit covering addr has a subprogram covering it — "no
// information available", not an error.
//
// When the line table has no exact entry at addr (e.g. addr falls inside
// an instruction the compiler attributed to no line), ProbePoint reports
// Function and a byte Offset from the entry PC instead of File/Line; this
// keeps the §8 round-trip law intact for the case the law actually
// exercises (probeable lines, which always have a line-table entry).
func ReverseLookup(f *DwarfFile, cfg *Config, addr uint64) (ProbePoint, bool, error) {
	cus, err := f.allCUs()
	if err != nil {
		return ProbePoint{}, false, err
	}
	cursor := newDieCursor(f.Data())

	for _, cu := range cus {
		has, err := entryHasPC(f.Data(), cu, addr)
		if err != nil {
			return ProbePoint{}, false, err
		}
		if !has {
			continue
		}

		sp, err := findSubprogramByPC(cursor, f.Data(), cu, addr)
		if err != nil {
			return ProbePoint{}, false, err
		}
		if sp == nil {
			continue
		}

		anchor := sp
		if inst, err := findInlineInstance(cursor, f.Data(), sp, addr); err != nil {
			return ProbePoint{}, false, err
		} else if inst != nil {
			if origin := resolveAbstractOrigin(f.Data(), inst); origin != nil {
				anchor = origin
			}
		}
		name, _ := anchor.Val(dwarf.AttrName).(string)

		file, line, found, err := exactLineAt(f.Data(), cu, addr)
		if err != nil {
			return ProbePoint{}, false, err
		}
		point := ProbePoint{Function: name}
		if found {
			point.File = file
			point.Line = line
		} else if lowPC, ok := entryLowPC(sp); ok {
			point.Offset = addr - lowPC
		}
		return point, true, nil
	}
	return ProbePoint{}, false, nil
}

// resolveAbstractOrigin follows DW_AT_abstract_origin from an inlined
// instance back to the abstract subprogram DIE carrying its name and
// declaration line.
func resolveAbstractOrigin(data *dwarf.Data, inst *dwarf.Entry) *dwarf.Entry {
	off, ok := inst.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset)
	if !ok {
		return nil
	}
	r := data.Reader()
	r.Seek(off)
	e, err := r.Next()
	if err != nil {
		return nil
	}
	return e
}

// exactLineAt finds the line-table entry whose address equals addr.
func exactLineAt(data *dwarf.Data, cu *dwarf.Entry, addr uint64) (file string, line int, found bool, err error) {
	lr, err := data.LineReader(cu)
	if err != nil {
		return "", 0, false, wrapf(Malformed, err, "read line table")
	}
	if lr == nil {
		return "", 0, false, nil
	}
	var le dwarf.LineEntry
	for {
		err := lr.Next(&le)
		if err == io.EOF {
			return "", 0, false, nil
		}
		if err != nil {
			return "", 0, false, wrapf(Malformed, err, "read line table")
		}
		if le.EndSequence || le.File == nil {
			continue
		}
		if le.Address == addr {
			return le.File.Name, le.Line, true, nil
		}
	}
}
