package lexer

import (
	"attrsync/internal/token"
)

// Longest match first: three-byte operators, then two-byte, then single.
// Only the punctuation the engine navigates by gets its own kind.
var multiOps = []struct {
	text string
	kind token.Kind
}{
	{"...", token.Ellipsis},
	{"?->", token.Arrow},
	{"<=>", token.Other},
	{"===", token.Other},
	{"!==", token.Other},
	{"**=", token.Other},
	{"??=", token.Other},
	{"<<=", token.Other},
	{">>=", token.Other},
	{"::", token.DoubleColon},
	{"=>", token.DoubleArrow},
	{"->", token.Arrow},
	{"==", token.Other},
	{"!=", token.Other},
	{"<>", token.Other},
	{"<=", token.Other},
	{">=", token.Other},
	{"&&", token.Other},
	{"||", token.Other},
	{"??", token.Other},
	{"++", token.Other},
	{"--", token.Other},
	{"+=", token.Other},
	{"-=", token.Other},
	{"*=", token.Other},
	{"/=", token.Other},
	{".=", token.Other},
	{"%=", token.Other},
	{"&=", token.Other},
	{"|=", token.Other},
	{"^=", token.Other},
	{"**", token.Other},
	{"<<", token.Other},
	{">>", token.Other},
}

var singleOps = [256]token.Kind{
	'(':  token.LParen,
	')':  token.RParen,
	'[':  token.LBracket,
	']':  token.RBracket,
	'{':  token.LBrace,
	'}':  token.RBrace,
	',':  token.Comma,
	';':  token.Semicolon,
	':':  token.Colon,
	'\\': token.NsSeparator,
	'?':  token.Question,
	'|':  token.Pipe,
	'&':  token.Amp,
	'-':  token.Minus,
	'+':  token.Plus,
	'=':  token.Assign,
	'.':  token.Dot,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range multiOps {
		if lx.cursor.HasPrefix(op.text) {
			lx.cursor.BumpN(len(op.text))
			return lx.finish(op.kind, start)
		}
	}
	b := lx.cursor.Bump()
	if k := singleOps[b]; k != token.Invalid {
		return lx.finish(k, start)
	}
	return lx.finish(token.Other, start)
}
