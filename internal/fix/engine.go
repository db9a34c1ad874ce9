package fix

import (
	"slices"
	"sort"

	"attrsync/internal/op"
	"attrsync/internal/source"
)

// Changeset holds the edits resolving the messages of one declaration.
type Changeset struct {
	File  source.FileID
	Edits []Edit
	// Messages lists every message of the reconciliation, Fixed the ones
	// whose edits are part of the changeset.
	Messages []*op.Message
	Fixed    []*op.Message
}

func (cs *Changeset) Empty() bool {
	return cs == nil || len(cs.Edits) == 0
}

// Buffer applies changesets built against one snapshot to a copy of its
// content. Edit spans stay in snapshot coordinates; Buffer shifts them past
// the edits already committed.
type Buffer struct {
	data    []byte
	applied []Edit
}

func NewBuffer(content []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), content...)}
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

// Changed reports whether any edit was committed.
func (b *Buffer) Changed() bool {
	return len(b.applied) > 0
}

// Commit applies every edit of cs or none of them. It fails with a
// *ConflictError when two edits overlap or a target range does not hold the
// expected text.
func (b *Buffer) Commit(cs *Changeset) error {
	if cs.Empty() {
		return nil
	}
	edits := slices.Clone(cs.Edits)
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start == edits[j].Span.Start {
			return edits[i].Span.End > edits[j].Span.End
		}
		return edits[i].Span.Start > edits[j].Span.Start
	})
	for i := 1; i < len(edits); i++ {
		if spansConflict(edits[i-1], edits[i]) {
			return &ConflictError{Span: edits[i].Span, Reason: "edits overlap"}
		}
	}
	for _, e := range edits {
		for _, prev := range b.applied {
			if spansConflict(prev, e) {
				return &ConflictError{Span: e.Span, Reason: "overlaps an edit already applied"}
			}
		}
	}

	working := append([]byte(nil), b.data...)
	existing := slices.Clone(b.applied)
	for _, e := range edits {
		start := int(e.Span.Start) + cumulativeDelta(existing, int(e.Span.Start))
		end := int(e.Span.End) + cumulativeDelta(existing, int(e.Span.End))
		if start < 0 || end < start || end > len(working) {
			return &ConflictError{Span: e.Span, Reason: "edit span out of range", Expected: e.OldText}
		}
		if actual := string(working[start:end]); actual != e.OldText {
			return &ConflictError{
				Span:     e.Span,
				Reason:   "existing text does not match expected content",
				Expected: e.OldText,
				Actual:   actual,
			}
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], e.NewText...), suffix...)
		existing = insertEditSorted(existing, e)
	}
	b.data = working
	b.applied = existing
	return nil
}

// Apply applies cs to buf, which must hold the content cs was built from.
func Apply(buf []byte, cs *Changeset) ([]byte, error) {
	b := NewBuffer(buf)
	if err := b.Commit(cs); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// spansConflict reports whether two edits' spans overlap. Spans are
// half-open; two insertions never conflict, an insertion conflicts with a
// span strictly containing its position.
func spansConflict(a, b Edit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

func cumulativeDelta(edits []Edit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		if eEnd <= pos {
			delta += len(e.NewText) - (eEnd - eStart)
		}
	}
	return delta
}

func insertEditSorted(edits []Edit, edit Edit) []Edit {
	idx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Span.Start == edit.Span.Start {
			return edits[i].Span.End >= edit.Span.End
		}
		return edits[i].Span.Start > edit.Span.Start
	})
	return slices.Insert(edits, idx, edit)
}
