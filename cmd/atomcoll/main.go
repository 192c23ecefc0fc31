package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		if err := writeUsage(stderr); err != nil {
			return exitFailure
		}
		return exitUsage
	}
	name, rest := args[0], args[1:]
	switch name {
	case "decode", "encode", "roundtrip":
	case "help", "-h", "--help":
		if err := writeUsage(stdout); err != nil {
			return exitFailure
		}
		return exitOK
	default:
		if err := writef(stderr, "error: unknown command %q\n\n", name); err != nil {
			return exitFailure
		}
		if err := writeUsage(stderr); err != nil {
			return exitFailure
		}
		return exitUsage
	}

	fs := pflag.NewFlagSet("atomcoll "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var values flagValues
	bindFlags(fs, &values)
	cpuProfilePath := fs.String("cpuprofile", "", "write CPU profile to file")
	memProfilePath := fs.String("memprofile", "", "write memory profile to file")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: atomcoll %s [flags] %s\n\n", name, argsUsage(name)),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) && usageErr == nil {
			return exitOK
		}
		return exitUsage
	}

	paths := fs.Args()
	if (name == "decode" && len(paths) == 0) || (name != "decode" && len(paths) != 1) {
		if err := writef(stderr, "error: %s expects %s\n", name, argsUsage(name)); err != nil {
			return exitFailure
		}
		fs.Usage()
		if usageErr != nil {
			return exitFailure
		}
		return exitUsage
	}

	cfg, err := loadConfig(fs, values)
	if err != nil {
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return exitFailure
		}
		return exitUsage
	}
	diag := newDiagnostics(stderr, cfg.NoColor)
	itemType, err := cfg.resolveItemType()
	if err != nil {
		if writeErr := diag.usage("%v", err); writeErr != nil {
			return exitFailure
		}
		return exitUsage
	}

	if *cpuProfilePath != "" {
		stopCPUProfile, err := startCPUProfile(*cpuProfilePath)
		if err != nil {
			_ = writef(stderr, "error starting CPU profile: %v\n", err)
			return exitFailure
		}
		defer func() {
			if err := stopCPUProfile(); err != nil {
				_ = writef(stderr, "error stopping CPU profile: %v\n", err)
			}
		}()
	}
	if *memProfilePath != "" {
		defer func() {
			if err := writeMemProfile(*memProfilePath); err != nil {
				_ = writef(stderr, "error writing memory profile: %v\n", err)
			}
		}()
	}

	cmd := &command{
		cfg:      cfg,
		itemType: itemType,
		logger:   cfg.logger(stderr),
		diag:     diag,
		stdin:    stdin,
		stdout:   stdout,
	}
	switch name {
	case "decode":
		return cmd.decode(paths)
	case "encode":
		return cmd.encode(paths[0])
	default:
		return cmd.roundtrip(paths[0])
	}
}

func argsUsage(name string) string {
	if name == "decode" {
		return "FILE..."
	}
	return "FILE"
}

func writeUsage(w io.Writer) error {
	return errors.Join(
		writeln(w, "Usage: atomcoll <command> [flags] FILE..."),
		writeln(w),
		writeln(w, "Reads and writes Atom/XML collection payloads."),
		writeln(w),
		writeln(w, "Commands:"),
		writeln(w, "  decode     print the items of each payload as YAML"),
		writeln(w, "  encode     write a YAML item list as a payload"),
		writeln(w, "  roundtrip  decode, encode and decode again, diffing the results"),
		writeln(w),
		writeln(w, "Run 'atomcoll <command> --help' for the flags of a command."),
	)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, fmt.Errorf("start cpu profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("start cpu profile %s: %w", path, err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("write mem profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write mem profile %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
