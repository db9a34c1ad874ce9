package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"attrsync/internal/diag"
	"attrsync/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, fixed *color.Color
	gutter, caret, bold    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		fixed:  color.New(color.FgGreen),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgMagenta, color.Bold),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.fixed, p.gutter, p.caret, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty prints every diagnostic of r as
//
//	<path>:<line>:<col>: <severity>[<code>]: <message>
//
// followed by the source line with the span underlined, and the notes.
// The bag is expected to be sorted.
func Pretty(w io.Writer, r Report, opts PrettyOpts) error {
	if r.Bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	for _, d := range r.Bag.Items() {
		if err := prettyOne(w, r, d, opts, p); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, r Report, d diag.Diagnostic, opts PrettyOpts, p palette) error {
	loc := r.locate(d.Primary, opts.PathMode, opts.BaseDir)
	var b strings.Builder
	b.WriteString(p.bold.Sprint(loc.String()))
	b.WriteString(": ")
	b.WriteString(p.severity(d.Severity).Sprintf("%s[%s]", strings.ToLower(d.Severity.String()), d.Code.ID()))
	b.WriteString(": ")
	b.WriteString(d.Message)
	switch {
	case d.Fixed:
		b.WriteString(" ")
		b.WriteString(p.fixed.Sprint("(fixed)"))
	case d.Fixable:
		b.WriteString(" ")
		b.WriteString(p.fixed.Sprint("(fixable)"))
	}
	b.WriteString("\n")
	if loc.file != nil && d.Primary.End > 0 {
		writeSnippet(&b, loc, opts, p)
	}
	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			nloc := r.locate(n.Span, opts.PathMode, opts.BaseDir)
			b.WriteString("  ")
			b.WriteString(p.info.Sprint("note"))
			if nloc.file != nil && !n.Span.Empty() {
				b.WriteString(" at ")
				b.WriteString(nloc.String())
			}
			b.WriteString(": ")
			b.WriteString(strings.ReplaceAll(n.Msg, "\n", "\n        "))
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeSnippet prints the context lines and the primary line with a caret
// run under the span. Columns are measured in display cells.
func writeSnippet(b *strings.Builder, loc location, opts PrettyOpts, p palette) {
	line := loc.start.Line
	first := line
	ctx := uint32(max(opts.Context, 0))
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := line + ctx
	gutter := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		text, ok := lineText(loc.file, n)
		if !ok {
			break
		}
		display := expandTabs(text)
		if opts.Width > 0 {
			display = runewidth.Truncate(display, int(opts.Width), "...")
		}
		fmt.Fprintf(b, "%s %s\n", p.gutter.Sprintf("%*d |", gutter, n), display)
		if n != line {
			continue
		}
		startCol := int(loc.start.Col) - 1
		endCol := len(text)
		if loc.end.Line == line {
			endCol = int(loc.end.Col) - 1
		}
		startCol = min(max(startCol, 0), len(text))
		endCol = min(max(endCol, startCol), len(text))
		pad := runewidth.StringWidth(expandTabs(text[:startCol]))
		width := max(runewidth.StringWidth(expandTabs(text[startCol:endCol])), 1)
		carets := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(b, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutter, ""), strings.Repeat(" ", pad), p.caret.Sprint(carets))
	}
}

func lineText(f *source.File, line uint32) (string, bool) {
	if line == 0 || int(line) > len(f.LineIdx)+1 {
		return "", false
	}
	if int(line) == len(f.LineIdx)+1 {
		if len(f.LineIdx) > 0 && int(f.LineIdx[len(f.LineIdx)-1])+1 == len(f.Content) {
			return "", false
		}
	}
	return f.GetLine(line), true
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
