package lexer

import (
	"attrsync/internal/diag"
	"attrsync/internal/token"
)

// scanLineComment reads "//" or "#" comments up to, but not including, the
// newline or a closing "?>".
func (lx *Lexer) scanLineComment() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' || (b == '?' && lx.cursor.PeekAt(1) == '>') {
			break
		}
		lx.cursor.Bump()
	}
	return lx.finish(token.Comment, start)
}

func (lx *Lexer) scanBlockComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(2)
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
			lx.cursor.BumpN(2)
			return lx.finish(token.Comment, start)
		}
		lx.cursor.Bump()
	}
	lx.errLex(diag.LexUnterminatedComment, lx.cursor.SpanFrom(start), "unterminated comment")
	return lx.finish(token.Comment, start)
}

// scanDocComment splits a "/** ... */" block into doc tokens and queues them.
//
// Per line: leading blanks become DocWhitespace, the first '*' a DocStar, an
// '@name' opening the line content a DocTag, and the remaining text up to the
// trailing blanks a DocString. A newline is always a DocWhitespace of its own.
func (lx *Lexer) scanDocComment() {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(3)
	lx.queue(token.DocOpen, start)

	starAllowed := false
	contentStart := true
	for !lx.cursor.EOF() {
		m := lx.cursor.Mark()
		b := lx.cursor.Peek()
		switch {
		case b == '*' && lx.cursor.PeekAt(1) == '/':
			lx.cursor.BumpN(2)
			lx.queue(token.DocClose, m)
			return
		case b == '\n':
			lx.cursor.Bump()
			lx.queue(token.DocWhitespace, m)
			starAllowed, contentStart = true, true
		case b == ' ' || b == '\t':
			for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
				lx.cursor.Bump()
			}
			lx.queue(token.DocWhitespace, m)
		case b == '*' && starAllowed:
			lx.cursor.Bump()
			lx.queue(token.DocStar, m)
			starAllowed = false
		case b == '@' && contentStart && isTagByte(lx.cursor.PeekAt(1)):
			lx.cursor.Bump()
			for isTagByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.queue(token.DocTag, m)
			starAllowed, contentStart = false, false
		default:
			lx.scanDocString()
			lx.queue(token.DocString, m)
			starAllowed, contentStart = false, false
		}
	}
	lx.errLex(diag.LexUnterminatedComment, lx.cursor.SpanFrom(start), "unterminated doc comment")
}

// scanDocString consumes text up to the end of line or "*/", leaving
// trailing blanks for the next DocWhitespace.
func (lx *Lexer) scanDocString() {
	lastText := lx.cursor.Off
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' || (b == '*' && lx.cursor.PeekAt(1) == '/') {
			break
		}
		lx.cursor.Bump()
		if b != ' ' && b != '\t' {
			lastText = lx.cursor.Off
		}
	}
	lx.cursor.Off = lastText
}

func (lx *Lexer) queue(k token.Kind, start Mark) {
	lx.pending = append(lx.pending, lx.finish(k, start))
}

func isTagByte(b byte) bool {
	return isIdentContinueByte(b) || b == '-' || b == '\\'
}
