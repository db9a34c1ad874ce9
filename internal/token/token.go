package token

import (
	"attrsync/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind  Kind
	Span  source.Span
	Text  string
	Line  uint32
	Match int // index of the paired delimiter, -1 if none
}

// Is reports whether the token has kind k and, when text is not empty,
// exactly that text.
func (t Token) Is(k Kind, text string) bool {
	return t.Kind == k && (text == "" || t.Text == text)
}

// Snapshot is the immutable token stream of one file version. Every
// extraction and reconciliation step reads from a Snapshot; edits are
// computed against it and validated before they are applied.
type Snapshot struct {
	File   *source.File
	Tokens []Token
}

// Content returns the bytes the snapshot was built from.
func (s *Snapshot) Content() []byte {
	return s.File.Content
}

// Text returns the source text between the start of token from and the end
// of token to, inclusive.
func (s *Snapshot) Text(from, to int) string {
	if from < 0 || to >= len(s.Tokens) || from > to {
		return ""
	}
	return s.File.Text(source.Span{File: s.File.ID, Start: s.Tokens[from].Span.Start, End: s.Tokens[to].Span.End})
}

// Span returns the span covering tokens from..to inclusive.
func (s *Snapshot) Span(from, to int) source.Span {
	return source.Span{File: s.File.ID, Start: s.Tokens[from].Span.Start, End: s.Tokens[to].Span.End}
}
