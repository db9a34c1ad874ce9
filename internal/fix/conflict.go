package fix

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"attrsync/internal/source"
)

// ConflictError reports an edit whose target no longer holds the text it
// was built against, or that overlaps another edit.
type ConflictError struct {
	Span     source.Span
	Reason   string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("edit conflict at %s: %s", e.Span, e.Reason)
}

// Diff renders Actual against Expected, deletions as [-text-] and
// insertions as {+text+}.
func (e *ConflictError) Diff() string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(e.Expected, e.Actual, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}
