package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Overlaps reports whether two spans share at least one byte. Zero-length
// spans overlap a non-empty span only when they sit strictly inside it.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	if s.Empty() && other.Empty() {
		return false
	}
	if s.Empty() {
		return other.Start < s.Start && s.Start < other.End
	}
	if other.Empty() {
		return s.Start < other.Start && other.Start < s.End
	}
	return s.Start < other.End && other.Start < s.End
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}
