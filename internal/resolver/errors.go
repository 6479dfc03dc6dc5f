package resolver

import "fmt"

// Kind classifies a resolver error. It is never compared for equality
// directly; callers use errors.Is against the sentinel values below.
type Kind int

const (
	_ Kind = iota
	NotFound
	Invalid
	NotSupported
	OutOfRange
	IO
	OutOfMemory
	Malformed
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Invalid:
		return "invalid"
	case NotSupported:
		return "not supported"
	case OutOfRange:
		return "out of range"
	case IO:
		return "io"
	case OutOfMemory:
		return "out of memory"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// kindError pairs a Kind with a message and an optional wrapped cause.
// errors.Is(err, SomeKind) works because Kind implements error-comparable
// identity through Is; errors.As/errors.Unwrap reach the cause the same
// way fmt.Errorf("...: %w", err) would.
type kindError struct {
	kind  Kind
	msg   string
	cause error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.kind
}

func (e *kindError) Unwrap() error { return e.cause }

func (k Kind) Error() string { return k.String() }

// errf builds a Kind-tagged error, following the teacher's fmt.Errorf(...)
// wrapping idiom rather than a distinct exported error type per kind.
func errf(kind Kind, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &kindError{kind: kind, msg: fmt.Sprintf("%s: %s", msg, err), cause: err}
}
