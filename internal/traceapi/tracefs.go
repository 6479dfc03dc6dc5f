// Package traceapi formats resolver.ProbeResult values into the kernel
// tracer's kprobe_events textual grammar and writes/reads/deletes them
// through the tracefs control files. It is the direct successor to the
// external collaborators the resolver core assumes exist but never calls
// itself: installing, listing, and deleting probe definitions.
package traceapi

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// candidate mount points tried in order, mirroring the teacher's ksym.go
// availKprobeSymbol lookup (tracing mount preferred, debug mount as
// fallback, accepting either tracefs or debugfs magic on the fallback).
var tracefsCandidates = []struct {
	path   string
	fsType int64
}{
	{"/sys/kernel/tracing", unix.TRACEFS_MAGIC},
	{"/sys/kernel/debug/tracing", unix.TRACEFS_MAGIC},
	{"/sys/kernel/debug/tracing", unix.DEBUGFS_MAGIC},
}

func fsType(path string) (int64, error) {
	var statfs unix.Statfs_t
	if err := unix.Statfs(path, &statfs); err != nil {
		return 0, err
	}
	t := int64(statfs.Type)
	if unsafe.Sizeof(statfs.Type) == 4 {
		t = int64(uint32(statfs.Type))
	}
	return t, nil
}

var tracefsDir = sync.OnceValues(func() (string, error) {
	for _, c := range tracefsCandidates {
		if got, err := fsType(c.path); err == nil && got == c.fsType {
			return c.path, nil
		}
	}
	return "", fmt.Errorf("no mounted tracefs or debugfs tracing directory found")
})

// TracefsDir locates the mounted tracing control directory.
func TracefsDir() (string, error) {
	return tracefsDir()
}

// KprobeEventsPath returns the path of the kprobe_events control file.
func KprobeEventsPath() (string, error) {
	dir, err := TracefsDir()
	if err != nil {
		return "", err
	}
	return dir + "/kprobe_events", nil
}

// WriteKprobeEvent appends line to the kprobe_events control file,
// installing the probe (or, for a "-:group/event" line, removing one).
// Opened O_APPEND|O_WRONLY per spec.md §4.13: the kernel treats each
// write as one atomic command, never a rewrite of the whole file.
func WriteKprobeEvent(line string) error {
	path, err := KprobeEventsPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing %q to %s: %w", line, path, err)
	}
	return nil
}

// DeleteKprobeEvent removes a previously installed probe by group/event
// name.
func DeleteKprobeEvent(group, event string) error {
	return WriteKprobeEvent(fmt.Sprintf("-:%s/%s", group, event))
}

// ListKprobeEvents reads every currently installed probe definition line.
func ListKprobeEvents() ([]string, error) {
	path, err := KprobeEventsPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if scanner.Text() != "" {
			lines = append(lines, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return lines, nil
}

// AvailableFilterFunctions lists the function names the kernel's ftrace
// subsystem will accept a kprobe on, keyed by name, with the owning
// module name when the kernel reports one (empty for vmlinux-resident
// functions). Grounded directly on the teacher's availKprobeSymbol.
func AvailableFilterFunctions() (map[string]string, error) {
	dir, err := TracefsDir()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(dir + "/available_filter_functions")
	if err != nil {
		return nil, fmt.Errorf("reading available_filter_functions: %w", err)
	}
	funcs := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		module := ""
		if len(fields) == 2 {
			module = strings.Trim(fields[1], "[]")
		}
		funcs[fields[0]] = module
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning available_filter_functions: %w", err)
	}
	return funcs, nil
}
