package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// PreviewOpts configures the fix preview.
type PreviewOpts struct {
	Color bool
	// Context is the number of unchanged lines around each hunk.
	Context  int
	PathMode PathMode
	BaseDir  string
}

type lineOp struct {
	kind byte // ' ', '-' or '+'
	text string
}

// diffLines computes a line level diff of before and after.
func diffLines(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var ops []lineOp
	for _, d := range diffs {
		kind := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			ops = append(ops, lineOp{kind: kind, text: strings.TrimSuffix(l, "\n")})
		}
	}
	return ops
}

// Preview writes a unified diff of the fix for path. Nothing is written
// when before and after are equal.
func Preview(w io.Writer, path string, before, after []byte, opts PreviewOpts) error {
	if string(before) == string(after) {
		return nil
	}
	ctx := opts.Context
	if ctx < 0 {
		ctx = 3
	}
	var (
		del  = color.New(color.FgRed)
		ins  = color.New(color.FgGreen)
		hunk = color.New(color.FgCyan)
		head = color.New(color.Bold)
	)
	for _, c := range []*color.Color{del, ins, hunk, head} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	ops := diffLines(string(before), string(after))
	keep := make([]bool, len(ops))
	for i, op := range ops {
		if op.kind == ' ' {
			continue
		}
		for j := max(i-ctx, 0); j <= min(i+ctx, len(ops)-1); j++ {
			keep[j] = true
		}
	}

	name := formatPath(path, opts.PathMode, opts.BaseDir)
	var b strings.Builder
	b.WriteString(head.Sprintf("--- a/%s", name))
	b.WriteString("\n")
	b.WriteString(head.Sprintf("+++ b/%s", name))
	b.WriteString("\n")

	oldLine, newLine := 1, 1
	for i := 0; i < len(ops); {
		if !keep[i] {
			if ops[i].kind != '+' {
				oldLine++
			}
			if ops[i].kind != '-' {
				newLine++
			}
			i++
			continue
		}
		j := i
		oldCount, newCount := 0, 0
		for j < len(ops) && keep[j] {
			if ops[j].kind != '+' {
				oldCount++
			}
			if ops[j].kind != '-' {
				newCount++
			}
			j++
		}
		b.WriteString(hunk.Sprintf("@@ -%s +%s @@", hunkRange(oldLine, oldCount), hunkRange(newLine, newCount)))
		b.WriteString("\n")
		for _, op := range ops[i:j] {
			line := string(op.kind) + op.text
			switch op.kind {
			case '-':
				line = del.Sprint(line)
			case '+':
				line = ins.Sprint(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		oldLine += oldCount
		newLine += newCount
		i = j
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func hunkRange(start, count int) string {
	if count == 0 {
		start--
	}
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}
