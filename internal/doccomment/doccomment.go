// Package doccomment finds the doc comment of a declaration and splits it
// into tags.
package doccomment

import (
	"errors"
	"fmt"
	"strings"

	"attrsync/internal/decl"
	"attrsync/internal/locate"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

// ErrNotDocComment is returned when Tags is anchored on anything but "/**".
var ErrNotDocComment = errors.New("not a doc comment")

type Block struct {
	Opener int
	Closer int
	Span   source.Span
	// Indent precedes the '*' of continuation lines.
	Indent string
	// SingleLine is set for "/** ... */" written on one line.
	SingleLine bool
	// HasDescription is set when text precedes the first tag.
	HasDescription bool
}

type Tag struct {
	// Name includes the leading '@'.
	Name string
	// Content joins the text of the tag line and its continuation lines
	// with "\n". When the tag line itself is empty the content starts with
	// "\n".
	Content string
	// Span runs from the tag to the end of its last content line.
	Span source.Span
	// TagIndex is the DocTag token; LastIndex the last token of the content.
	TagIndex  int
	LastIndex int
	Block     *Block
}

// FindBlock returns the doc comment directly preceding the declaration at
// declIndex. Only whitespace, comments, modifiers and attribute groups may
// sit between the two.
func FindBlock(snap *token.Snapshot, declIndex int) (*Block, bool) {
	toks := snap.Tokens
	skip := locate.Preamble
	if kind, err := decl.Classify(toks, declIndex); err == nil {
		skip = kind.ModifierSet()
	}
	skip = skip.Without(token.DocClose)
	start := locate.FindStartOfRun(toks, skip, declIndex-1, locate.Unbounded)
	closer := start - 1
	if closer < 0 || toks[closer].Kind != token.DocClose || toks[closer].Match < 0 {
		return nil, false
	}
	return newBlock(snap, toks[closer].Match), true
}

func newBlock(snap *token.Snapshot, opener int) *Block {
	toks := snap.Tokens
	closer := toks[opener].Match
	if closer < 0 {
		closer = opener
		for closer+1 < len(toks) && toks[closer+1].Kind.IsDoc() && toks[closer+1].Kind != token.DocOpen {
			closer++
		}
	}
	b := &Block{
		Opener: opener,
		Closer: closer,
		Span:   snap.Span(opener, closer),
	}
	b.SingleLine = !strings.Contains(snap.Text(opener, closer), "\n")
	b.Indent = Indent(snap, opener)
	for i := opener + 1; i < closer; i++ {
		if toks[i].Kind == token.DocTag {
			break
		}
		if toks[i].Kind == token.DocString {
			b.HasDescription = true
			break
		}
	}
	return b
}

// Indent returns the text preceding '*' on the first continuation line of
// the block. Single-line blocks fall back to the indentation of the line
// holding the opener plus one space, so new lines align under "/**".
func Indent(snap *token.Snapshot, opener int) string {
	toks := snap.Tokens
	for i := opener + 1; i < len(toks) && toks[i].Kind.IsDoc() && toks[i].Kind != token.DocClose; i++ {
		if toks[i].Kind != token.DocWhitespace || toks[i].Text != "\n" {
			continue
		}
		next := i + 1
		if next < len(toks) && toks[next].Kind == token.DocWhitespace && toks[next].Text != "\n" {
			return toks[next].Text
		}
		if next < len(toks) && (toks[next].Kind == token.DocStar || toks[next].Kind == token.DocClose) {
			return ""
		}
	}
	return source.Indentation(snap.Content(), int(toks[opener].Span.Start)) + " "
}

// Tags splits the doc comment opened at toks[opener] into tags in source
// order. Text before the first tag is not part of any tag.
func Tags(snap *token.Snapshot, opener int) ([]Tag, error) {
	toks := snap.Tokens
	if opener < 0 || opener >= len(toks) || toks[opener].Kind != token.DocOpen {
		return nil, fmt.Errorf("%w: token %d", ErrNotDocComment, opener)
	}
	block := newBlock(snap, opener)

	var (
		out   []Tag
		lines []string
		cur   *Tag
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Content = strings.Join(lines, "\n")
		cur.Span = source.Span{
			File:  snap.File.ID,
			Start: toks[cur.TagIndex].Span.Start,
			End:   toks[cur.LastIndex].Span.End,
		}
		out = append(out, *cur)
		cur = nil
	}

	lineHasText := false
	for i := opener + 1; i < block.Closer; i++ {
		tok := toks[i]
		switch tok.Kind {
		case token.DocTag:
			flush()
			cur = &Tag{Name: tok.Text, TagIndex: i, LastIndex: i, Block: block}
			lines = lines[:0]
			lines = append(lines, "")
			lineHasText = true
		case token.DocString:
			if cur == nil {
				continue
			}
			if lineHasText {
				lines[len(lines)-1] += tok.Text
			} else {
				lines = append(lines, tok.Text)
			}
			lineHasText = true
			cur.LastIndex = i
		case token.DocWhitespace:
			if tok.Text == "\n" {
				lineHasText = false
			}
		}
	}
	flush()
	return out, nil
}
