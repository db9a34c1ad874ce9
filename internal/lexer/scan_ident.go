package lexer

import (
	"strings"

	"attrsync/internal/token"
)

// scanName reads identifiers, keywords and namespaced names:
// Foo, Foo\Bar, \Foo\Bar and namespace\Foo.
// Keywords right after "::" or "->" are member names and lex as Name.
func (lx *Lexer) scanName() token.Token {
	start := lx.cursor.Mark()
	leading := lx.cursor.Eat('\\')
	lx.bumpIdent()
	first := string(lx.file.Content[start:lx.cursor.Off])
	segments := 1
	for lx.cursor.Peek() == '\\' && isIdentStartByte(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		lx.bumpIdent()
		segments++
	}

	switch {
	case leading:
		return lx.finish(token.NameFullyQualified, start)
	case segments > 1 && strings.EqualFold(first, "namespace"):
		return lx.finish(token.NameRelative, start)
	case segments > 1:
		return lx.finish(token.NameQualified, start)
	}
	if lx.prev != token.DoubleColon && lx.prev != token.Arrow {
		if k, ok := token.LookupKeyword(first); ok {
			return lx.finish(k, start)
		}
	}
	return lx.finish(token.Name, start)
}

func (lx *Lexer) scanVariable() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '$'
	lx.bumpIdent()
	return lx.finish(token.Variable, start)
}

func (lx *Lexer) bumpIdent() {
	if !isIdentStartByte(lx.cursor.Peek()) {
		return
	}
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

// PHP identifiers are byte based: any byte >= 0x80 is a letter.
func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b >= 0x80
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'f') ||
		(b >= 'A' && b <= 'F')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
