package resolver

import (
	"debug/dwarf"
	"debug/elf"
)

// DwarfFile is an opened debug-info handle: a *dwarf.Data for DIE/type
// access plus the raw section bytes debug/dwarf does not expose but §4.3's
// location-list and §4.6's CFA resolution need directly. Grounded on the
// teacher's dwarf.go, which opens the same way (elf.Open then eFile.DWARF())
// but only needed the *dwarf.Data; we additionally keep the ELF handle
// alive for raw section reads.
type DwarfFile struct {
	elf  *elf.File
	data *dwarf.Data

	addrSize int
}

// OpenDwarfFile opens path as an ELF binary and loads its DWARF data.
func OpenDwarfFile(path string) (*DwarfFile, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, wrapf(IO, err, "open %s", path)
	}
	data, err := ef.DWARF()
	if err != nil {
		ef.Close()
		return nil, wrapf(Malformed, err, "parse DWARF in %s", path)
	}
	addrSize := 8
	if ef.Class == elf.ELFCLASS32 {
		addrSize = 4
	}
	return &DwarfFile{elf: ef, data: data, addrSize: addrSize}, nil
}

// Close releases the underlying ELF file. Any DIE/Type values obtained
// through f must not be used afterward (spec §5's read-only-borrow rule).
func (f *DwarfFile) Close() error {
	return f.elf.Close()
}

// Data returns the parsed DWARF data.
func (f *DwarfFile) Data() *dwarf.Data { return f.data }

// AddrSize is the target's pointer width in bytes, used to decode
// DW_OP_addr operands.
func (f *DwarfFile) AddrSize() int { return f.addrSize }

// sectionBytes returns the raw, uncompressed bytes of an ELF section by
// name, or nil if absent. debug/elf decompresses on access automatically
// when the section carries SHF_COMPRESSED.
func (f *DwarfFile) sectionBytes(name string) []byte {
	sec := f.elf.Section(name)
	if sec == nil {
		return nil
	}
	b, err := sec.Data()
	if err != nil {
		return nil
	}
	return b
}

// DebugLoc returns the raw .debug_loc section, or nil.
func (f *DwarfFile) DebugLoc() []byte { return f.sectionBytes(".debug_loc") }

// DebugFrame returns the raw .debug_frame section, or nil.
func (f *DwarfFile) DebugFrame() []byte { return f.sectionBytes(".debug_frame") }

// EhFrame returns the raw .eh_frame section, or nil.
func (f *DwarfFile) EhFrame() []byte { return f.sectionBytes(".eh_frame") }

// ByteOrder reports the target's byte order, needed to decode raw
// .debug_loc/.debug_frame fixed-width fields that debug/dwarf does not
// parse for us.
func (f *DwarfFile) ByteOrder() elfByteOrder {
	if f.elf.ByteOrder == nil {
		return elfByteOrder{littleEndian: true}
	}
	// elf.File.ByteOrder is a binary.ByteOrder; the only two
	// implementations in practice are LittleEndian/BigEndian, and the
	// only thing §4.3/§4.6 need from it is which one it is.
	return elfByteOrder{littleEndian: f.elf.ByteOrder.String() == "LittleEndian"}
}

type elfByteOrder struct {
	littleEndian bool
}

// CodeAt returns up to length bytes of a loaded section's contents
// starting at virtual address addr, for component L's instruction-
// boundary disassembly. Returns NotFound if no section covers addr.
func (f *DwarfFile) CodeAt(addr, length uint64) ([]byte, error) {
	for _, sec := range f.elf.Sections {
		if sec.Addr == 0 || addr < sec.Addr || addr >= sec.Addr+sec.Size {
			continue
		}
		data, err := sec.Data()
		if err != nil {
			return nil, wrapf(IO, err, "read section %s", sec.Name)
		}
		off := addr - sec.Addr
		if off >= uint64(len(data)) {
			return nil, errf(NotFound, "address 0x%x past end of section %s data", addr, sec.Name)
		}
		end := off + length
		if end > uint64(len(data)) {
			end = uint64(len(data))
		}
		return data[off:end], nil
	}
	return nil, errf(NotFound, "no section contains address 0x%x", addr)
}

// allCUs returns every compilation unit DIE.
func (f *DwarfFile) allCUs() ([]*dwarf.Entry, error) {
	var cus []*dwarf.Entry
	r := f.data.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return nil, wrapf(Malformed, err, "walk compilation units")
		}
		if e == nil {
			break
		}
		if e.Tag == dwarf.TagCompileUnit {
			cus = append(cus, e)
		}
		r.SkipChildren()
	}
	return cus, nil
}
