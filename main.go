package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/xixiliguo/probefind/internal/probeexpr"
	"github.com/xixiliguo/probefind/internal/probeinstall"
	"github.com/xixiliguo/probefind/internal/resolver"
	"github.com/xixiliguo/probefind/internal/sysinfo"
	"github.com/xixiliguo/probefind/internal/traceapi"
)

func main() {
	cli.AppHelpTemplate = fmt.Sprintf(`%s
EXAMPLES:
	probefind resolve -f /boot/vmlinux "tcp_v4_rcv(skb,skb->len)"
	probefind resolve -f /boot/vmlinux "schedule%%return%%(task->pid)"
	probefind resolve -f ./app "@main.go:42(rq->nr_running)"
	probefind install -f /boot/vmlinux -g probefind "schedule(task->pid)"
	probefind lines -f /boot/vmlinux tcp_v4_rcv
	probefind addr2line -f /boot/vmlinux 0xffffffff81234567
	probefind info

ENVIRONMENT:
	PROBEFIND_SOURCE_PREFIX	[default: ""] prefix prepended when resolving DWARF source paths
	`, cli.AppHelpTemplate)

	app := &cli.App{
		Usage:   "resolve C source probe expressions to kprobe-style trace points",
		Version: "0.1.0",
		Commands: []*cli.Command{
			resolveCommand,
			addr2lineCommand,
			linesCommand,
			listCommand,
			installCommand,
			deleteCommand,
			infoCommand,
		},
	}
	app.DisableSliceFlagSeparator = true

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
}

var debugInfoFlag = &cli.StringFlag{
	Name:     "file",
	Aliases:  []string{"f"},
	Required: true,
	Usage:    "path to the ELF binary (or module) carrying DWARF debug info",
}

var sourcePrefixFlag = &cli.StringFlag{
	Name:    "source-prefix",
	EnvVars: []string{"PROBEFIND_SOURCE_PREFIX"},
	Usage:   "prefix to resolve DWARF source paths against, per spec §4.11",
}

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "verbose resolver logging",
}

func openResolverConfig(cCtx *cli.Context) (*resolver.DwarfFile, *resolver.Config, error) {
	f, err := resolver.OpenDwarfFile(cCtx.String("file"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", cCtx.String("file"), err)
	}
	cfg := &resolver.Config{
		SourcePrefix: cCtx.String("source-prefix"),
		RegisterName: resolver.RegisterName,
		Logger:       resolver.NewStdLogger(cCtx.Bool("verbose")),
	}
	return f, cfg, nil
}

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "parse a probe expression and print the kprobe_events lines it resolves to",
	ArgsUsage: "EXPR",
	Flags:     []cli.Flag{debugInfoFlag, sourcePrefixFlag, verboseFlag},
	Action: func(cCtx *cli.Context) error {
		expr := cCtx.Args().First()
		if expr == "" {
			return fmt.Errorf("resolve requires a probe expression argument")
		}

		req, err := parseProbeRequest(expr)
		if err != nil {
			return err
		}

		f, cfg, err := openResolverConfig(cCtx)
		if err != nil {
			return err
		}
		defer f.Close()

		results, err := resolver.FindProbes(f, cfg, *req)
		if err != nil {
			return err
		}
		kind := traceapi.Kprobe
		if req.Selector.IsReturn {
			kind = traceapi.Kretprobe
		}
		for i, r := range results {
			group := "probefind"
			event := fmt.Sprintf("probe%d", i)
			fmt.Println(traceapi.FormatKprobeEvent(kind, group, event, r))
		}
		return nil
	},
}

// parseProbeRequest dispatches on a leading '@' the same way the teacher's
// own main.go dispatched on a leading ':' for DWARF-scoped function lists:
// a plain string-prefix check, not a grammar rule.
func parseProbeRequest(expr string) (*resolver.ProbeRequest, error) {
	if len(expr) > 0 && expr[0] == '@' {
		loc, err := probeexpr.ParseLocationExpr(expr[:indexOfParen(expr)])
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", expr, err)
		}
		args, err := probeexpr.ParseDataList(expr[indexOfParen(expr):])
		if err != nil {
			return nil, fmt.Errorf("parsing args in %q: %w", expr, err)
		}
		return loc.ToProbeRequest(args)
	}

	e, err := probeexpr.ParseProbeExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, err)
	}
	return e.ToProbeRequest()
}

func indexOfParen(s string) int {
	for i, r := range s {
		if r == '(' {
			return i
		}
	}
	return len(s)
}

var addr2lineCommand = &cli.Command{
	Name:      "addr2line",
	Usage:     "resolve an instruction address back to its enclosing function and source line",
	ArgsUsage: "ADDR",
	Flags:     []cli.Flag{debugInfoFlag, sourcePrefixFlag, verboseFlag},
	Action: func(cCtx *cli.Context) error {
		addrStr := cCtx.Args().First()
		if addrStr == "" {
			return fmt.Errorf("addr2line requires an address argument")
		}
		var addr uint64
		if _, err := fmt.Sscanf(addrStr, "0x%x", &addr); err != nil {
			if _, err := fmt.Sscanf(addrStr, "%d", &addr); err != nil {
				return fmt.Errorf("parsing address %q: %w", addrStr, err)
			}
		}

		f, cfg, err := openResolverConfig(cCtx)
		if err != nil {
			return err
		}
		defer f.Close()

		point, ok, err := resolver.ReverseLookup(f, cfg, addr)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%#x: no enclosing function found\n", addr)
			return nil
		}
		if point.File != "" {
			fmt.Printf("%#x: %s at %s:%d\n", addr, point.Function, point.File, point.Line)
		} else {
			fmt.Printf("%#x: %s+%#x\n", addr, point.Function, point.Offset)
		}
		return nil
	},
}

var linesCommand = &cli.Command{
	Name:      "lines",
	Usage:     "list the line numbers a function or file range resolves to",
	ArgsUsage: "FUNCTION | FILE:START-END",
	Flags:     []cli.Flag{debugInfoFlag, sourcePrefixFlag, verboseFlag},
	Action: func(cCtx *cli.Context) error {
		arg := cCtx.Args().First()
		if arg == "" {
			return fmt.Errorf("lines requires a function name or file range argument")
		}

		req, err := parseLineRangeArg(arg)
		if err != nil {
			return err
		}

		f, cfg, err := openResolverConfig(cCtx)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := resolver.FindLineRange(f, cfg, req)
		if err != nil {
			return err
		}
		if !result.Found {
			fmt.Printf("%s: not found\n", arg)
			return nil
		}
		fmt.Printf("%s\n", result.Path)
		for _, l := range result.Lines {
			fmt.Println(l)
		}
		return nil
	},
}

func parseLineRangeArg(arg string) (resolver.LineRangeRequest, error) {
	colon := -1
	for i, r := range arg {
		if r == ':' {
			colon = i
		}
	}
	if colon < 0 {
		return resolver.LineRangeRequest{Function: arg}, nil
	}
	file := arg[:colon]
	var start, end int
	if _, err := fmt.Sscanf(arg[colon+1:], "%d-%d", &start, &end); err != nil {
		return resolver.LineRangeRequest{}, fmt.Errorf("parsing line range %q: %w", arg, err)
	}
	return resolver.LineRangeRequest{File: file, Start: start, End: end}, nil
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "list currently installed kprobe_events definitions",
	Action: func(cCtx *cli.Context) error {
		lines, err := traceapi.ListKprobeEvents()
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	},
}

var installCommand = &cli.Command{
	Name:      "install",
	Usage:     "resolve a probe expression and write it into kprobe_events",
	ArgsUsage: "EXPR",
	Flags: []cli.Flag{
		debugInfoFlag, sourcePrefixFlag, verboseFlag,
		&cli.StringFlag{
			Name:    "group",
			Aliases: []string{"g"},
			Value:   "probefind",
			Usage:   "kprobe_events group name the installed events are written under",
		},
	},
	Action: func(cCtx *cli.Context) error {
		expr := cCtx.Args().First()
		if expr == "" {
			return fmt.Errorf("install requires a probe expression argument")
		}

		req, err := parseProbeRequest(expr)
		if err != nil {
			return err
		}

		f, cfg, err := openResolverConfig(cCtx)
		if err != nil {
			return err
		}
		defer f.Close()

		results, err := resolver.FindProbes(f, cfg, *req)
		if err != nil {
			return err
		}

		group := cCtx.String("group")
		kind := traceapi.Kprobe
		if req.Selector.IsReturn {
			kind = traceapi.Kretprobe
		}
		for i, r := range results {
			event := fmt.Sprintf("probe%d", i)
			line := traceapi.FormatKprobeEvent(kind, group, event, r)
			if err := traceapi.WriteKprobeEvent(line); err != nil {
				return fmt.Errorf("installing %q: %w", line, err)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var deleteCommand = &cli.Command{
	Name:      "delete",
	Usage:     "remove a previously installed kprobe_events definition",
	ArgsUsage: "GROUP/EVENT",
	Action: func(cCtx *cli.Context) error {
		arg := cCtx.Args().First()
		if arg == "" {
			return fmt.Errorf("delete requires a GROUP/EVENT argument")
		}
		slash := -1
		for i, r := range arg {
			if r == '/' {
				slash = i
				break
			}
		}
		if slash < 0 {
			return fmt.Errorf("expected GROUP/EVENT, got %q", arg)
		}
		return traceapi.DeleteKprobeEvent(arg[:slash], arg[slash+1:])
	},
}

var infoCommand = &cli.Command{
	Name:  "info",
	Usage: "show system info and detected eBPF features",
	Action: func(cCtx *cli.Context) error {
		i, err := sysinfo.ShowSysInfo()
		if err != nil {
			return err
		}
		fmt.Println(i)

		fmt.Printf("  kprobe-multi install path: %t\n", probeinstall.HaveKprobeMulti())

		funcs, err := traceapi.AvailableFilterFunctions()
		if err == nil {
			names := make([]string, 0, len(funcs))
			for n := range funcs {
				names = append(names, n)
			}
			sort.Strings(names)
			fmt.Printf("\navailable_filter_functions: %d symbols\n", len(names))
		}
		return nil
	},
}
