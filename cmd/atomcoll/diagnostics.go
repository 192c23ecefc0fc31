package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
)

// diagnostics writes errors and diffs to stderr, colored only when stderr
// is a terminal.
type diagnostics struct {
	w       io.Writer
	errText *color.Color
	kind    *color.Color
	added   *color.Color
	removed *color.Color
}

func newDiagnostics(w io.Writer, noColor bool) diagnostics {
	enabled := !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(w)
	paint := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return diagnostics{
		w:       w,
		errText: paint(color.FgRed, color.Bold),
		kind:    paint(color.FgYellow),
		added:   paint(color.FgGreen),
		removed: paint(color.FgRed),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// fault reports err for path, naming the fault kind when err is a codec fault.
func (d diagnostics) fault(path string, err error) error {
	label := d.errText.Sprint("error:")
	if f, ok := xmlerrors.AsFault(err); ok {
		return writef(d.w, "%s %s: %s %v\n", label, path, d.kind.Sprintf("%s", f.Kind), err)
	}
	return writef(d.w, "%s %s: %v\n", label, path, err)
}

func (d diagnostics) usage(format string, args ...any) error {
	return writef(d.w, "%s %s\n", d.errText.Sprint("error:"), fmt.Sprintf(format, args...))
}

// diff writes a line diff of before and after and reports whether they differ.
func (d diagnostics) diff(before, after string) (bool, error) {
	if before == after {
		return false, nil
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, diff := range diffs {
		prefix, c := "  ", (*color.Color)(nil)
		switch diff.Type {
		case diffpatch.DiffInsert:
			prefix, c = "+ ", d.added
		case diffpatch.DiffDelete:
			prefix, c = "- ", d.removed
		}
		for line := range strings.Lines(diff.Text) {
			text := prefix + strings.TrimSuffix(line, "\n")
			if c != nil {
				text = c.Sprint(text)
			}
			if err := writeln(d.w, text); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}
