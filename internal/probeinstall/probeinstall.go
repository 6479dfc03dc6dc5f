// Package probeinstall attaches a loaded eBPF program at a resolver-
// resolved probe site, as the modern successor to writing textual
// definitions into the kernel tracer's control files (internal/traceapi).
package probeinstall

import (
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"

	"github.com/xixiliguo/probefind/internal/resolver"
	"github.com/xixiliguo/probefind/internal/sysinfo"
)

// Installer attaches and owns a batch of kprobe/kretprobe links, closing
// them together on Close. Grounded on the teacher's FuncGraph.links
// field and Run/Close lifecycle in funcgraph.go, generalized from its
// fixed two-program (entry/return) shape to an arbitrary set of resolved
// probe sites each carrying its own program.
type Installer struct {
	links []link.Link
}

// Site is one probe site to attach, pairing a resolver.ProbeResult with
// the eBPF program that should run there.
type Site struct {
	Result   resolver.ProbeResult
	Program  *ebpf.Program
	IsReturn bool
}

// NewInstaller raises the memlock limit, mirroring every eBPF-loading
// entry point's first step in the teacher's codebase (cilium/ebpf
// requires this on kernels without an unprivileged BPF map accounting
// model).
func NewInstaller() (*Installer, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("removing memlock limit: %w", err)
	}
	return &Installer{}, nil
}

// Attach installs one probe site. When the kernel supports kprobe-multi
// (sysinfo.HaveKprobeMulti) and no caller has forced single-probe mode,
// callers should prefer AttachMulti for a batch of sites sharing one
// program; Attach always uses the single-probe link.Kprobe/link.Kretprobe
// path.
func (in *Installer) Attach(s Site) error {
	var l link.Link
	var err error
	if s.IsReturn {
		l, err = link.Kretprobe(s.Result.Symbol, s.Program, nil)
	} else {
		l, err = link.Kprobe(s.Result.Symbol, s.Program, &link.KprobeOptions{Offset: s.Result.Offset})
	}
	if err != nil {
		return fmt.Errorf("attaching probe at %s+%d: %w", s.Result.Symbol, s.Result.Offset, err)
	}
	in.links = append(in.links, l)
	return nil
}

// AttachMulti installs every site in sites with a single kprobe-multi (or
// kretprobe-multi) link sharing prog, one batched syscall instead of one
// per symbol. Only each site's Result.Symbol is used: every site is
// attached at its function entry, and a nonzero Result.Offset is not
// applied. On a kernel without kprobe-multi support (see
// sysinfo.HaveKprobeMulti) the attach fails and the error is returned;
// Attach is the single-probe path for that case.
func (in *Installer) AttachMulti(sites []Site, prog *ebpf.Program, isReturn bool) error {
	if len(sites) == 0 {
		return nil
	}
	symbols := make([]string, len(sites))
	for i, s := range sites {
		symbols[i] = s.Result.Symbol
	}
	opts := link.KprobeMultiOptions{Symbols: symbols}

	var l link.Link
	var err error
	if isReturn {
		l, err = link.KretprobeMulti(prog, opts)
	} else {
		l, err = link.KprobeMulti(prog, opts)
	}
	if err != nil {
		return fmt.Errorf("attaching kprobe-multi for %d symbols: %w", len(symbols), err)
	}
	in.links = append(in.links, l)
	return nil
}

// HaveKprobeMulti reports whether the running kernel supports batch
// kprobe-multi attachment, delegated to sysinfo's feature probe.
func HaveKprobeMulti() bool {
	return sysinfo.HaveKprobeMulti()
}

// Close detaches every link this Installer attached, in attach order.
func (in *Installer) Close() error {
	var firstErr error
	for _, l := range in.links {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	in.links = nil
	return firstErr
}
