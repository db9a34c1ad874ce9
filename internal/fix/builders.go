package fix

import (
	"fmt"

	"fortio.org/safecast"

	"attrsync/internal/source"
	"attrsync/internal/token"
)

// Edit replaces the bytes of Span with NewText. OldText is what Span held
// when the edit was built; Commit refuses to apply the edit otherwise.
type Edit struct {
	Span    source.Span
	NewText string
	OldText string
}

func offset(off int) uint32 {
	v, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("edit offset overflow: %w", err))
	}
	return v
}

// InsertText creates an edit inserting text at offset off.
func InsertText(file source.FileID, off int, text string) Edit {
	return Edit{
		Span:    source.Span{File: file, Start: offset(off), End: offset(off)},
		NewText: text,
	}
}

// DeleteSpan removes the bytes [start, end) of snap.
func DeleteSpan(snap *token.Snapshot, start, end int) Edit {
	return ReplaceSpan(snap, start, end, "")
}

// ReplaceSpan replaces the bytes [start, end) of snap with newText.
func ReplaceSpan(snap *token.Snapshot, start, end int, newText string) Edit {
	return Edit{
		Span:    source.Span{File: snap.File.ID, Start: offset(start), End: offset(end)},
		NewText: newText,
		OldText: string(snap.Content()[start:end]),
	}
}
