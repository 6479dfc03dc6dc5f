// Package resolver walks DWARF debugging information to translate a
// high-level probe request into low-level kprobe-style probe records, and
// performs the reverse address-to-source translation. It is a pure
// translator: it never writes to the kernel tracing filesystem and never
// loads an eBPF program (see internal/traceapi and internal/probeinstall).
package resolver

// FieldStep is one link in a variable's field-access chain: "->a.b[2]"
// lowers to three steps.
type FieldStep struct {
	Name          string
	IsDereference bool // true for "->", false for "."
	IsIndex       bool // true for "[Index]"
	Index         int
}

// ArgSpec describes one piece of data to capture at a probe site.
type ArgSpec struct {
	// DisplayName is the user-supplied alias, or empty to synthesize one
	// per §4.7.
	DisplayName string
	// Expression is either a raw passthrough token ($retval, %REG,
	// @SYMBOL, or any string that is not a C identifier) or a C variable
	// name, walked through Fields.
	Expression string
	Fields     []FieldStep
	// TypeCast overrides the inferred type tag when non-empty.
	TypeCast string
}

// Selector picks the target instruction address(es) for a ProbeRequest.
// Exactly one of the three shapes described in spec §3 is populated; the
// zero value of the unused int/bool pairs means "not given".
type Selector struct {
	Function string

	SourceFile string

	HasRelLine   bool
	RelativeLine int

	HasByteOffset bool
	ByteOffset    uint64

	IsReturn bool

	HasAbsLine   bool
	AbsoluteLine int

	LazyPattern string
}

// ProbeRequest is produced by the excluded front-end parser (here,
// internal/probeexpr) and consumed read-only by FindProbes.
type ProbeRequest struct {
	Selector Selector
	Args     []ArgSpec
}

// TraceArg is one resolved argument in the kernel tracer's grammar.
type TraceArg struct {
	Name         string
	Value        string
	Indirections []int64
	TypeTag      string
}

// ProbeResult is one concrete probe site.
type ProbeResult struct {
	Symbol string
	Offset uint64
	Args   []TraceArg
}

// Config is the read-only context injected into every entry point, per
// spec §9's "global configuration -> injected context" design note.
type Config struct {
	// SourcePrefix is prepended to DWARF source paths per §4.11. Empty
	// means "use the raw path".
	SourcePrefix string
	// RegisterName maps an architecture DWARF register number to its
	// assembler name. Returns ok=false for numbers with no mapping.
	RegisterName func(archRegNum uint64) (name string, ok bool)
	// Logger receives debug/info/warning/error messages. Defaults to a
	// no-op sink when nil.
	Logger Logger
	// MaxProbes bounds the number of ProbeResults a single FindProbes
	// call may emit. Zero means the default of 128.
	MaxProbes int
}

func (c *Config) logger() Logger {
	if c == nil || c.Logger == nil {
		return nopLogger{}
	}
	return c.Logger
}

func (c *Config) maxProbes() int {
	if c == nil || c.MaxProbes <= 0 {
		return 128
	}
	return c.MaxProbes
}

func (c *Config) registerName(n uint64) (string, bool) {
	if c == nil || c.RegisterName == nil {
		return "", false
	}
	return c.RegisterName(n)
}

func (c *Config) sourcePrefix() string {
	if c == nil {
		return ""
	}
	return c.SourcePrefix
}

// ProbePoint is the result of ReverseLookup: the enclosing function and,
// where available, the source location.
type ProbePoint struct {
	Function string
	// Offset is the byte offset of the address from the enclosing
	// subprogram's low PC; it is set (and File/Line left empty) when the
	// line table has no entry at exactly that address.
	Offset uint64
	// File and Line are the line-table entry at exactly the address; Line
	// is the absolute source line. Both are empty when no such entry exists.
	File string
	Line int
}

// LineRangeRequest selects a function or a file+range for FindLineRange.
type LineRangeRequest struct {
	Function string // mutually exclusive with File

	File  string
	Start int
	End   int
}

// LineRangeResult is the outcome of FindLineRange.
type LineRangeResult struct {
	Found bool
	Path  string
	Lines []int
}
