package locate

import (
	"attrsync/internal/token"
)

// Unbounded disables the end bound of a walk.
const Unbounded = -1

// FindStartOfRun walks backward from start while token kinds are in skip and
// returns the index of the first token of the run. It returns start+1 when
// toks[start] is not in skip. A non-negative end is the lowest index the walk
// may reach.
func FindStartOfRun(toks []token.Token, skip token.KindSet, start, end int) int {
	i := start
	for i >= 0 && i < len(toks) && (end < 0 || i >= end) {
		tok := toks[i]
		if !skip.Has(tok.Kind) {
			break
		}
		if isCloser(tok.Kind) && tok.Match >= 0 && tok.Match < i {
			if end >= 0 && tok.Match < end {
				break
			}
			i = tok.Match
		}
		i--
	}
	return i + 1
}

// FindEndOfRun walks forward from start while token kinds are in skip and
// returns the index of the last token of the run, or start-1 when toks[start]
// is not in skip. A non-negative end is the highest index the walk may reach.
func FindEndOfRun(toks []token.Token, skip token.KindSet, start, end int) int {
	i := start
	for i >= 0 && i < len(toks) && (end < 0 || i <= end) {
		tok := toks[i]
		if !skip.Has(tok.Kind) {
			break
		}
		if isOpener(tok.Kind) && tok.Match > i {
			if end >= 0 && tok.Match > end {
				break
			}
			i = tok.Match
		}
		i++
	}
	return i - 1
}

// FindPreviousInRun searches backward from start for a token of kind whose
// text equals value (any text when value is empty). Only tokens of the
// searched kind or with a kind in allow may be crossed. Returns -1 when the
// run ends first.
func FindPreviousInRun(toks []token.Token, allow token.KindSet, kind token.Kind, value string, start, end int) int {
	for i := start; i >= 0 && i < len(toks) && (end < 0 || i >= end); i-- {
		tok := toks[i]
		if tok.Is(kind, value) {
			return i
		}
		if !allow.Has(tok.Kind) && tok.Kind != kind {
			return -1
		}
	}
	return -1
}

// FindNextInRun is the forward counterpart of FindPreviousInRun.
func FindNextInRun(toks []token.Token, allow token.KindSet, kind token.Kind, value string, start, end int) int {
	for i := start; i >= 0 && i < len(toks) && (end < 0 || i <= end); i++ {
		tok := toks[i]
		if tok.Is(kind, value) {
			return i
		}
		if !allow.Has(tok.Kind) && tok.Kind != kind {
			return -1
		}
	}
	return -1
}

// SkipTrivia returns the first index at or after i that is not whitespace or
// a comment, or len(toks).
func SkipTrivia(toks []token.Token, i int) int {
	end := FindEndOfRun(toks, Trivia, i, Unbounded)
	return end + 1
}

// PrevSignificant returns the last index before i that is not whitespace,
// a comment or doc comment, or -1.
func PrevSignificant(toks []token.Token, i int) int {
	return FindStartOfRun(toks, Trivia.Union(DocComment), i-1, Unbounded) - 1
}

func isCloser(k token.Kind) bool {
	switch k {
	case token.AttributeClose, token.DocClose, token.RParen, token.RBracket, token.RBrace:
		return true
	}
	return false
}

func isOpener(k token.Kind) bool {
	switch k {
	case token.AttributeOpen, token.DocOpen, token.LParen, token.LBracket, token.LBrace:
		return true
	}
	return false
}
