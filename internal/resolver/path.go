package resolver

import (
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// strtailcmp reports whether a and b match from the right: compare
// character by character from the end until either string is exhausted. Preserved exactly per spec §9 — this is
// intentionally tolerant of build-tree vs. source-tree prefix
// differences, so it is a plain suffix compare, not a component-boundary
// aware one.
func strtailcmp(a, b string) bool {
	i, j := len(a)-1, len(b)-1
	for i >= 0 && j >= 0 {
		if a[i] != b[j] {
			return false
		}
		i--
		j--
	}
	return true
}

// resolveSourcePath implements spec §4.11: given a raw DWARF source path
// and an optional configured prefix, find a readable file. With no
// prefix, the raw path itself must be readable. With a prefix, retry with
// successively shorter suffixes of raw, stripping one leading path
// component at a time, until access succeeds or the suffix is exhausted.
func resolveSourcePath(raw, prefix string) (string, error) {
	if prefix == "" {
		if err := accessReadable(raw); err != nil {
			return "", err
		}
		return raw, nil
	}

	suffix := raw
	for {
		candidate := prefix + "/" + suffix
		err := accessReadable(candidate)
		if err == nil {
			return candidate, nil
		}
		if !isRetryableAccessError(err) {
			return "", err
		}
		next := stripLeadingComponent(suffix)
		if next == suffix {
			return "", errf(NotFound, "no readable path for %q under prefix %q", raw, prefix)
		}
		suffix = next
	}
}

func accessReadable(path string) error {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return wrapf(IO, err, "access %s", path)
	}
	return nil
}

func isRetryableAccessError(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.ENOENT, unix.ENAMETOOLONG, unix.EROFS, unix.EFAULT:
		return true
	default:
		return false
	}
}

// stripLeadingComponent removes the first "/"-delimited component of p,
// e.g. "a/b/c" -> "b/c". Returns p unchanged if there is no "/" left to
// strip, so the caller can detect exhaustion.
func stripLeadingComponent(p string) string {
	p = strings.TrimPrefix(p, "/")
	idx := strings.IndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}
