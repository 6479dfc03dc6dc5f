// Package probeexpr parses the CLI-facing textual probe syntax into a
// resolver.ProbeRequest. It is the excluded front-end collaborator the
// resolver core assumes exists but never imports; the resolver consumes
// only the ProbeRequest/ArgSpec values this package produces.
//
// Grammar (grounded on the teacher's func_expr.go FuncExpr/DataExpr):
//
//	probe   := ident selector? ('(' (data (',' data)*)? ')')?
//	selector:= '+' number | ':' number | '%' pattern '%'
//	data    := '*'? cast? ident field* (':str')?
//	cast    := '(' 'struct' ident '*' ')'
//	field   := '->' ident ('.' ident)* ('[' number ']')?
package probeexpr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/xixiliguo/probefind/internal/resolver"
)

// Expr is the parsed form of one probe expression: a function selector
// plus an argument-capture list.
type Expr struct {
	Name string `parser:"@Ident"`

	// Selector is the optional decoration after the function name that
	// picks a byte offset, a relative source line, or a '%...%'-delimited
	// lazy line pattern. "%return%" is the reserved pattern spelling a
	// return probe, resolved by ParseProbeExpr below since the grammar
	// itself cannot tell it apart from any other pattern text. At most
	// one of Offset/RelLine/LazyPattern is ever set.
	Offset      uint64 `parser:"( Plus @Number"`
	RelLine     int64  `parser:"| Colon @Number"`
	LazyPattern string `parser:"| @LazyPat )?"`
	IsReturn    bool

	Datas []DataExpr `parser:"(LeftEdge (@@ (Separator @@)*)? RightEdge)?"`
}

// DataExpr is one captured argument.
type DataExpr struct {
	Dereference bool         `parser:"@DereferenceOperator?"`
	Cast        string       `parser:"(LeftEdge Struct @Ident DereferenceOperator RightEdge)?"`
	Name        string       `parser:"@Ident"`
	Fields      []FieldChain `parser:"@@*"`
	ShowString  bool         `parser:"@ShowString?"`
}

// FieldChain is one "->head.tail1.tail2[index]" access starting at an
// arrow. Grounded on spec.md §4.5's outermost-first FieldStep accumulation:
// the arrow-introduced head dereferences a pointer, each dot-joined tail
// name is a plain struct member access, and a trailing index applies to
// whichever member came last.
type FieldChain struct {
	Head  string   `parser:"ArrowOperator @Ident"`
	Tail  []string `parser:"(Period @Ident)*"`
	Index *int64   `parser:"(LeftBracket @Number RightBracket)?"`
}

var exprParser = sync.OnceValue[*participle.Parser[Expr]](func() *participle.Parser[Expr] {
	l := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Struct", Pattern: `struct\b`},
		{Name: "LazyPat", Pattern: `%[^%]*%`},
		{Name: "DereferenceOperator", Pattern: `\*`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z_0-9]*`},
		{Name: "ArrowOperator", Pattern: `->`},
		{Name: "ShowString", Pattern: `:str`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Period", Pattern: `\.`},
		{Name: "Plus", Pattern: `\+`},
		{Name: "LeftBracket", Pattern: `\[`},
		{Name: "RightBracket", Pattern: `\]`},
		{Name: "LeftEdge", Pattern: `\(`},
		{Name: "RightEdge", Pattern: `\)`},
		{Name: "Separator", Pattern: `,`},
		{Name: "Number", Pattern: `(0x[0-9a-fA-F]+)|(\d+)`},
	})
	p, err := participle.Build[Expr](participle.Lexer(l), participle.Elide("Whitespace"))
	if err != nil {
		panic(err)
	}
	return p
})

// ParseProbeExpr parses a probe expression's textual form.
func ParseProbeExpr(s string) (*Expr, error) {
	p := exprParser()
	e, err := p.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parsing probe expression %q: %w", s, err)
	}
	if e.LazyPattern != "" {
		e.LazyPattern = strings.TrimSuffix(strings.TrimPrefix(e.LazyPattern, "%"), "%")
		if e.LazyPattern == "return" {
			e.IsReturn = true
			e.LazyPattern = ""
		}
	}
	return e, nil
}

// ToProbeRequest lowers a parsed Expr into a resolver.ProbeRequest for a
// by-function selector.
func (e *Expr) ToProbeRequest() (*resolver.ProbeRequest, error) {
	sel := resolver.Selector{Function: e.Name, IsReturn: e.IsReturn}
	switch {
	case e.LazyPattern != "":
		sel.LazyPattern = e.LazyPattern
	case e.RelLine != 0:
		sel.HasRelLine = true
		sel.RelativeLine = int(e.RelLine)
	case e.Offset != 0:
		sel.HasByteOffset = true
		sel.ByteOffset = e.Offset
	}
	args, err := lowerDatas(e.Datas)
	if err != nil {
		return nil, err
	}
	return &resolver.ProbeRequest{Selector: sel, Args: args}, nil
}

func lowerDatas(datas []DataExpr) ([]resolver.ArgSpec, error) {
	specs := make([]resolver.ArgSpec, 0, len(datas))
	for _, d := range datas {
		spec := resolver.ArgSpec{Expression: d.Name}
		if d.Cast != "" {
			spec.TypeCast = d.Cast
		}
		if d.ShowString {
			spec.TypeCast = "string"
		}
		for _, chain := range d.Fields {
			spec.Fields = append(spec.Fields, resolver.FieldStep{Name: chain.Head, IsDereference: true})
			for _, tail := range chain.Tail {
				spec.Fields = append(spec.Fields, resolver.FieldStep{Name: tail})
			}
			if chain.Index != nil {
				spec.Fields = append(spec.Fields, resolver.FieldStep{IsIndex: true, Index: int(*chain.Index)})
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// String renders e back into its textual form, used by the round-trip
// property in spec §8.
func (e *Expr) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	switch {
	case e.IsReturn:
		b.WriteString("%return%")
	case e.LazyPattern != "":
		b.WriteByte('%')
		b.WriteString(e.LazyPattern)
		b.WriteByte('%')
	case e.RelLine != 0:
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(e.RelLine, 10))
	case e.Offset != 0:
		b.WriteByte('+')
		b.WriteString(strconv.FormatUint(e.Offset, 10))
	}
	if len(e.Datas) > 0 {
		b.WriteByte('(')
		for i, d := range e.Datas {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(d.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// String renders one captured argument back into its textual form.
func (d DataExpr) String() string {
	var b strings.Builder
	if d.Dereference {
		b.WriteByte('*')
	}
	if d.Cast != "" {
		b.WriteString(fmt.Sprintf("(struct %s *)", d.Cast))
	}
	b.WriteString(d.Name)
	for _, f := range d.Fields {
		b.WriteString("->")
		b.WriteString(f.Head)
		for _, t := range f.Tail {
			b.WriteByte('.')
			b.WriteString(t)
		}
		if f.Index != nil {
			b.WriteByte('[')
			b.WriteString(strconv.FormatInt(*f.Index, 10))
			b.WriteByte(']')
		}
	}
	if d.ShowString {
		b.WriteString(":str")
	}
	return b.String()
}
