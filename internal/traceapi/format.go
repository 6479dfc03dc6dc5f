package traceapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xixiliguo/probefind/internal/resolver"
)

// ProbeKind selects the kprobe_events command letter.
type ProbeKind rune

const (
	Kprobe    ProbeKind = 'p'
	Kretprobe ProbeKind = 'r'
)

// FormatKprobeEvent renders one resolver.ProbeResult as a kprobe_events
// definition line, per spec.md §4.13:
//
//	p:<group>/<event> <symbol>[+<offset>] arg1=<value> arg2=<value> ...
//	r:<group>/<event> <symbol>[+<offset>] arg1=<value> ...
//
// The "+<offset>" part is omitted when the offset is zero.
func FormatKprobeEvent(kind ProbeKind, group, event string, pr resolver.ProbeResult) string {
	var b strings.Builder
	b.WriteRune(rune(kind))
	b.WriteByte(':')
	b.WriteString(group)
	b.WriteByte('/')
	b.WriteString(event)
	b.WriteByte(' ')
	b.WriteString(pr.Symbol)
	if pr.Offset != 0 {
		b.WriteByte('+')
		b.WriteString(strconv.FormatUint(pr.Offset, 10))
	}
	for _, arg := range pr.Args {
		b.WriteByte(' ')
		b.WriteString(FormatArg(arg))
	}
	return b.String()
}

// FormatArg renders one TraceArg as "<name>=<value-expr>[:<type_tag>]".
// The value expression nests Indirections outermost-first: two frames
// render as "+off1(+off2(REG))", one frame as "+off(REG)", zero frames as
// the bare value (a register name, "@symbol", or a passthrough token like
// "$retval"/"%di" carried straight through from ArgSpec.Expression).
func FormatArg(arg resolver.TraceArg) string {
	expr := arg.Value
	for i := len(arg.Indirections) - 1; i >= 0; i-- {
		off := arg.Indirections[i]
		sign := "+"
		if off < 0 {
			sign = ""
		}
		expr = sign + strconv.FormatInt(off, 10) + "(" + expr + ")"
	}
	if arg.TypeTag != "" {
		return fmt.Sprintf("%s=%s:%s", arg.Name, expr, arg.TypeTag)
	}
	return fmt.Sprintf("%s=%s", arg.Name, expr)
}

// ParsedKprobeEvent is the field-split inverse of FormatKprobeEvent, used
// by the round-trip property in spec.md §8.
type ParsedKprobeEvent struct {
	Kind   ProbeKind
	Group  string
	Event  string
	Symbol string
	Offset uint64
	Args   []string
}

// ParseKprobeEvent splits a kprobe_events line back into its
// symbol/offset/args triple.
func ParseKprobeEvent(line string) (ParsedKprobeEvent, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ParsedKprobeEvent{}, fmt.Errorf("malformed kprobe_events line %q", line)
	}
	head := fields[0]
	colon := strings.IndexByte(head, ':')
	slash := strings.IndexByte(head, '/')
	if colon < 0 || slash < 0 || slash < colon {
		return ParsedKprobeEvent{}, fmt.Errorf("malformed kprobe_events header %q", head)
	}
	kind := ProbeKind(head[0])
	group := head[colon+1 : slash]
	event := head[slash+1:]

	symAndOffset := fields[1]
	symbol := symAndOffset
	var offset uint64
	if i := strings.IndexByte(symAndOffset, '+'); i >= 0 {
		symbol = symAndOffset[:i]
		off, err := strconv.ParseUint(symAndOffset[i+1:], 10, 64)
		if err != nil {
			return ParsedKprobeEvent{}, fmt.Errorf("malformed offset in %q: %w", symAndOffset, err)
		}
		offset = off
	}

	return ParsedKprobeEvent{
		Kind:   kind,
		Group:  group,
		Event:  event,
		Symbol: symbol,
		Offset: offset,
		Args:   fields[2:],
	}, nil
}
