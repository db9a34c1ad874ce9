// Package attrs extracts the attribute groups written before a declaration.
package attrs

import (
	"fmt"
	"strings"

	"attrsync/internal/decl"
	"attrsync/internal/locate"
	"attrsync/internal/names"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

// ErrUnsupportedDeclaration is returned when the anchor is not a declaration
// attributes can attach to.
var ErrUnsupportedDeclaration = decl.ErrUnsupportedDeclaration

// Param is one argument of an attribute, with surrounding blanks trimmed.
type Param struct {
	Text string
	Span source.Span
	// Name is set for named arguments ("name: value"); Text keeps the prefix.
	Name string
	// Start and End are the first and last token of the argument.
	Start, End int
}

// Value returns the argument text without a named-argument prefix.
func (p Param) Value(toks []token.Token) (from, to int) {
	if p.Name == "" {
		return p.Start, p.End
	}
	colon := locate.SkipTrivia(toks, p.Start+1)
	return locate.SkipTrivia(toks, colon+1), p.End
}

type Attribute struct {
	// Name is the attribute name as written, FQName its resolved form
	// without a leading backslash.
	Name   string
	FQName string
	Params []Param
	// Index is the token holding the name.
	Index int
	// Span covers the entry from its name to its closing parenthesis.
	Span source.Span
	// Group covers the whole "#[ ... ]" the entry belongs to.
	Group       source.Span
	GroupOpener int
	GroupCloser int
	// InMultiGroup is set when the group holds more than one entry; such
	// entries cannot be edited on their own.
	InMultiGroup bool
}

// Extract returns the attributes of the declaration anchored at declIndex in
// source order. A declaration without attributes yields an empty slice.
func Extract(snap *token.Snapshot, declIndex int, r *names.Resolver) ([]Attribute, error) {
	toks := snap.Tokens
	kind, err := decl.Classify(toks, declIndex)
	if err != nil {
		return nil, err
	}
	start := locate.FindStartOfRun(toks, kind.ModifierSet(), declIndex-1, locate.Unbounded)

	var groups [][2]int
	for i := declIndex - 1; i >= start; i-- {
		if toks[i].Kind == token.AttributeClose && toks[i].Match >= start {
			groups = append(groups, [2]int{toks[i].Match, i})
			i = toks[i].Match
		}
	}

	out := make([]Attribute, 0, len(groups))
	for g := len(groups) - 1; g >= 0; g-- {
		entries, err := splitGroup(snap, groups[g][0], groups[g][1], r)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func splitGroup(snap *token.Snapshot, opener, closer int, r *names.Resolver) ([]Attribute, error) {
	toks := snap.Tokens
	group := snap.Span(opener, closer)
	ranges := SplitTopLevel(toks, opener+1, closer-1)
	out := make([]Attribute, 0, len(ranges))
	for _, rg := range ranges {
		name := rg[0]
		if !toks[name].Kind.IsName() {
			return nil, fmt.Errorf("attribute group at %s: expected name, got %s", group, toks[name].Kind)
		}
		a := Attribute{
			Name:        toks[name].Text,
			FQName:      r.Resolve(toks[name].Text, name),
			Index:       name,
			Span:        snap.Span(name, rg[1]),
			Group:       group,
			GroupOpener: opener,
			GroupCloser: closer,
		}
		if lp := locate.SkipTrivia(toks, name+1); lp <= rg[1] && toks[lp].Kind == token.LParen && toks[lp].Match > lp {
			for _, p := range SplitTopLevel(toks, lp+1, toks[lp].Match-1) {
				a.Params = append(a.Params, newParam(snap, p[0], p[1]))
			}
		}
		out = append(out, a)
	}
	if len(out) > 1 {
		for i := range out {
			out[i].InMultiGroup = true
		}
	}
	return out, nil
}

func newParam(snap *token.Snapshot, from, to int) Param {
	toks := snap.Tokens
	p := Param{Text: snap.Text(from, to), Span: snap.Span(from, to), Start: from, End: to}
	if toks[from].Kind == token.Name || toks[from].Kind.IsKeyword() {
		if c := locate.SkipTrivia(toks, from+1); c <= to && toks[c].Kind == token.Colon {
			p.Name = toks[from].Text
		}
	}
	return p
}

// SplitTopLevel splits toks[from..to] on commas outside nested delimiters
// and returns the inclusive token range of each non-empty part, trimmed of
// whitespace and comments.
func SplitTopLevel(toks []token.Token, from, to int) [][2]int {
	var out [][2]int
	partStart := from
	flush := func(end int) {
		s := locate.SkipTrivia(toks, partStart)
		e := locate.FindStartOfRun(toks, locate.Trivia, end, s) - 1
		if s <= e {
			out = append(out, [2]int{s, e})
		}
	}
	for i := from; i <= to && i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace, token.AttributeOpen:
			if toks[i].Match > i {
				i = toks[i].Match
			}
		case token.Comma:
			flush(i - 1)
			partStart = i + 1
		}
	}
	flush(to)
	return out
}

// Insertion describes where a new attribute group goes.
type Insertion struct {
	Offset int
	// Indent is the indentation of the line holding Offset.
	Indent string
	// LineStart is set when only blanks precede Offset on its line.
	LineStart bool
}

// InsertionPoint returns the position before the first existing attribute
// group, or before the declaration's leading modifier run when there is none.
func InsertionPoint(snap *token.Snapshot, declIndex int) (Insertion, error) {
	toks := snap.Tokens
	kind, err := decl.Classify(toks, declIndex)
	if err != nil {
		return Insertion{}, err
	}
	start := locate.FindStartOfRun(toks, kind.ModifierSet(), declIndex-1, locate.Unbounded)
	at := declIndex
	for i := start; i < declIndex; i++ {
		if toks[i].Kind == token.AttributeOpen {
			at = i
			break
		}
	}
	if at == declIndex {
		// first modifier after any doc comment
		for i := start; i < declIndex; i++ {
			if !locate.Preamble.Has(toks[i].Kind) {
				at = i
				break
			}
			if toks[i].Kind.IsDoc() && toks[i].Match > i {
				i = toks[i].Match
			}
		}
	}
	content := snap.Content()
	off := int(toks[at].Span.Start)
	indent := source.Indentation(content, off)
	lineStart := source.LineStart(content, off)
	return Insertion{
		Offset:    off,
		Indent:    indent,
		LineStart: strings.TrimLeft(string(content[lineStart:off]), " \t") == "",
	}, nil
}
