package lexer

import (
	"strings"

	"attrsync/internal/diag"
	"attrsync/internal/token"
)

// scanQuoted reads '...', "..." and `...` literals. Escapes are skipped, not
// decoded; interpolation is not parsed. Backtick commands lex as Other.
func (lx *Lexer) scanQuoted(quote byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch b {
		case '\\':
			lx.cursor.Bump()
		case quote:
			if quote == '`' {
				return lx.finish(token.Other, start)
			}
			return lx.finish(token.StringLit, start)
		}
	}
	lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated string literal")
	return lx.finish(token.Invalid, start)
}

// scanHeredoc reads <<<ID, <<<"ID" and <<<'ID' blocks up to the closing
// identifier. The whole block is one Other token.
func (lx *Lexer) scanHeredoc() (token.Token, bool) {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(3)
	for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
		lx.cursor.Bump()
	}
	quote := lx.cursor.Peek()
	if quote == '"' || quote == '\'' {
		lx.cursor.Bump()
	} else {
		quote = 0
	}
	idStart := lx.cursor.Off
	lx.bumpIdent()
	id := string(lx.file.Content[idStart:lx.cursor.Off])
	if id == "" || (quote != 0 && !lx.cursor.Eat(quote)) || !lx.cursor.Eat('\n') {
		lx.cursor.Reset(start)
		return token.Token{}, false
	}

	for !lx.cursor.EOF() {
		lineStart := lx.cursor.Off
		for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
			lx.cursor.Bump()
		}
		if lx.cursor.HasPrefix(id) && !isIdentContinueByte(lx.cursor.PeekAt(uint32(len(id)))) { // #nosec G115
			lx.cursor.BumpN(len(id))
			return lx.finish(token.Other, start), true
		}
		lx.cursor.Off = lineStart
		for !lx.cursor.EOF() && lx.cursor.Bump() != '\n' {
		}
	}
	lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated heredoc "+strings.TrimSpace(id))
	return lx.finish(token.Invalid, start), true
}
