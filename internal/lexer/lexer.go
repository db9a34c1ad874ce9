package lexer

import (
	"strings"

	"attrsync/internal/diag"
	"attrsync/internal/source"
	"attrsync/internal/token"
)

// Lexer turns PHP source into a lossless token stream: concatenating the
// Text of every token reproduces the input.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	inPHP   bool
	line    uint32
	prev    token.Kind    // last significant kind, for member-name detection
	pending []token.Token // queued doc comment pieces
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		line:   1,
		prev:   token.Invalid,
	}
}

// Tokenize lexes the whole file, pairs delimiters and returns the snapshot.
// The last token is always EOF.
func Tokenize(file *source.File, opts Options) *token.Snapshot {
	lx := New(file, opts)
	toks := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	pairDelimiters(toks, opts.Reporter)
	return &token.Snapshot{File: file, Tokens: toks}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if len(lx.pending) > 0 {
		tok := lx.pending[0]
		lx.pending = lx.pending[1:]
		return tok
	}
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan(), Line: lx.line, Match: -1}
	}
	if !lx.inPHP {
		return lx.scanInlineHTML()
	}

	ch := lx.cursor.Peek()
	switch {
	case isSpace(ch):
		return lx.scanWhitespace()
	case ch == '#' && lx.cursor.PeekAt(1) == '[':
		start := lx.cursor.Mark()
		lx.cursor.BumpN(2)
		return lx.finish(token.AttributeOpen, start)
	case ch == '#' || (ch == '/' && lx.cursor.PeekAt(1) == '/'):
		return lx.scanLineComment()
	case ch == '/' && lx.cursor.PeekAt(1) == '*':
		if lx.cursor.HasPrefix("/**") && isSpace(lx.cursor.PeekAt(3)) {
			lx.scanDocComment()
			return lx.Next()
		}
		return lx.scanBlockComment()
	case ch == '?' && lx.cursor.PeekAt(1) == '>':
		return lx.scanCloseTag()
	case ch == '$' && isIdentStartByte(lx.cursor.PeekAt(1)):
		return lx.scanVariable()
	case isIdentStartByte(ch):
		return lx.scanName()
	case ch == '\\' && isIdentStartByte(lx.cursor.PeekAt(1)):
		return lx.scanName()
	case isDec(ch) || (ch == '.' && isDec(lx.cursor.PeekAt(1))):
		return lx.scanNumber()
	case ch == '\'' || ch == '"' || ch == '`':
		return lx.scanQuoted(ch)
	case ch == '<' && lx.cursor.HasPrefix("<<<"):
		if tok, ok := lx.scanHeredoc(); ok {
			return tok
		}
	}
	return lx.scanOperatorOrPunct()
}

// finish builds the token spanning from start to the cursor.
func (lx *Lexer) finish(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	tok := token.Token{Kind: k, Span: sp, Text: text, Line: lx.line, Match: -1}
	lx.line += uint32(strings.Count(text, "\n")) // #nosec G115 -- bounded by file size
	if k != token.Whitespace && k != token.Comment && !k.IsDoc() {
		lx.prev = k
	}
	return tok
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) scanInlineHTML() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		if n := lx.openTagLen(); n > 0 {
			if lx.cursor.Mark() > start {
				return lx.finish(token.InlineHTML, start)
			}
			lx.cursor.BumpN(n)
			lx.inPHP = true
			return lx.finish(token.OpenTag, start)
		}
		lx.cursor.Bump()
	}
	return lx.finish(token.InlineHTML, start)
}

// openTagLen returns the length of "<?php", "<?=" or "<?" at the cursor, or 0.
func (lx *Lexer) openTagLen() int {
	if lx.cursor.Peek() != '<' || lx.cursor.PeekAt(1) != '?' {
		return 0
	}
	rest := lx.file.Content[lx.cursor.Off:lx.cursor.Limit]
	if len(rest) >= 5 && strings.EqualFold(string(rest[2:5]), "php") {
		if len(rest) == 5 || isSpace(rest[5]) {
			return 5
		}
	}
	if len(rest) >= 3 && rest[2] == '=' {
		return 3
	}
	return 2
}

func (lx *Lexer) scanCloseTag() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(2)
	lx.cursor.Eat('\n')
	lx.inPHP = false
	return lx.finish(token.CloseTag, start)
}

func (lx *Lexer) scanWhitespace() token.Token {
	start := lx.cursor.Mark()
	for isSpace(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	return lx.finish(token.Whitespace, start)
}

// pairDelimiters links every opener with its closer through Token.Match and
// turns the ']' closing "#[" into AttributeClose.
func pairDelimiters(toks []token.Token, r diag.Reporter) {
	stack := make([]int, 0, 16)
	report := func(i int, msg string) {
		if r != nil {
			diag.ReportError(r, diag.LexUnbalancedDelimiter, toks[i].Span, msg).Emit()
		}
	}
	for i := range toks {
		switch toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace, token.AttributeOpen:
			stack = append(stack, i)
		case token.RParen, token.RBracket, token.RBrace:
			j := len(stack) - 1
			for j >= 0 && !closes(toks[stack[j]].Kind, toks[i].Kind) {
				j--
			}
			if j < 0 {
				report(i, "unmatched '"+toks[i].Text+"'")
				continue
			}
			for k := len(stack) - 1; k > j; k-- {
				report(stack[k], "unclosed '"+toks[stack[k]].Text+"'")
			}
			open := stack[j]
			stack = stack[:j]
			if toks[open].Kind == token.AttributeOpen {
				toks[i].Kind = token.AttributeClose
			}
			toks[open].Match = i
			toks[i].Match = open
		case token.DocOpen:
			for j := i + 1; j < len(toks); j++ {
				if toks[j].Kind == token.DocClose {
					toks[i].Match = j
					toks[j].Match = i
					break
				}
				if !toks[j].Kind.IsDoc() {
					break
				}
			}
		}
	}
	for _, open := range stack {
		report(open, "unclosed '"+toks[open].Text+"'")
	}
}

func closes(open, closer token.Kind) bool {
	switch open {
	case token.LParen:
		return closer == token.RParen
	case token.LBracket, token.AttributeOpen:
		return closer == token.RBracket
	case token.LBrace:
		return closer == token.RBrace
	}
	return false
}
