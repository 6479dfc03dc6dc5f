package resolver

import "debug/dwarf"

// walkFields implements spec §4.5: consumes an ordered field-access chain
// starting from baseType at loc, accumulating byte offsets into a list of
// indirection frames in application order: the first frame applies to the
// base location and the last is the current outermost frame. Returns the
// frames and the type of the final value; resolveArg reverses the frames
// into TraceArg.Indirections' outermost-first order.
func walkFields(baseType dwarf.Type, loc Location, steps []FieldStep) ([]int64, dwarf.Type, error) {
	var frames []int64
	if loc.IsReference {
		frames = append(frames, loc.Offset)
	}
	curType := baseType

	for _, step := range steps {
		real := resolveType(curType)

		switch {
		case step.IsIndex:
			switch rt := real.(type) {
			case *dwarf.ArrayType:
				if rt.Type == nil {
					return nil, nil, errf(Invalid, "array type with no element type")
				}
				if len(frames) == 0 {
					return nil, nil, errf(NotSupported, "array index on a value with no indirection frame")
				}
				frames[len(frames)-1] += int64(step.Index) * int64(byteSize(rt.Type))
				curType = rt.Type

			case *dwarf.PtrType:
				if rt.Type == nil {
					return nil, nil, errf(Invalid, "pointer type with no pointee")
				}
				frames = append(frames, int64(step.Index)*int64(byteSize(rt.Type)))
				curType = rt.Type

			default:
				return nil, nil, errf(Invalid, "[%d] on a non-array, non-pointer type", step.Index)
			}

		case step.IsDereference:
			ptr, ok := real.(*dwarf.PtrType)
			if !ok {
				return nil, nil, errf(Invalid, "-> on a non-pointer type")
			}
			if ptr.Type == nil {
				return nil, nil, errf(Invalid, "pointer type with no pointee")
			}
			st, ok := resolveType(ptr.Type).(*dwarf.StructType)
			if !ok {
				return nil, nil, errf(Invalid, "-> requires a pointer to a structure")
			}
			field, ok := structField(st, step.Name)
			if !ok {
				return nil, nil, errf(NotFound, "no member %q", step.Name)
			}
			frames = append(frames, field.ByteOffset)
			curType = field.Type

		default:
			if _, ok := real.(*dwarf.PtrType); ok {
				return nil, nil, errf(Invalid, "must use -> on a pointer, not .")
			}
			st, ok := real.(*dwarf.StructType)
			if !ok {
				return nil, nil, errf(Invalid, ". on a non-structure type")
			}
			if len(frames) == 0 {
				return nil, nil, errf(NotSupported, "structure field access on a value with no indirection frame")
			}
			field, ok := structField(st, step.Name)
			if !ok {
				return nil, nil, errf(NotFound, "no member %q", step.Name)
			}
			frames[len(frames)-1] += field.ByteOffset
			curType = field.Type
		}
	}

	return frames, curType, nil
}
