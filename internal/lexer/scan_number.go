package lexer

import (
	"attrsync/internal/token"
)

// scanNumber reads 0x1F, 0b101, 0o17, 017, 1_000, 1.5, .5, 1e-3 and 1.0E+10.
// Signs are separate tokens.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			digit = isHex
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		}
		if digit != nil && digit(lx.cursor.PeekAt(2)) {
			lx.cursor.BumpN(2)
			lx.bumpDigits(digit)
			return lx.finish(kind, start)
		}
	}

	lx.bumpDigits(isDec)
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.bumpDigits(isDec)
	} else if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' && lx.cursor.Off > uint32(start) {
		// "1." is a float
		kind = token.FloatLit
		lx.cursor.Bump()
	}

	if e := lx.cursor.Peek(); e == 'e' || e == 'E' {
		sign := lx.cursor.PeekAt(1)
		switch {
		case isDec(sign):
			lx.cursor.Bump()
			lx.bumpDigits(isDec)
			kind = token.FloatLit
		case (sign == '+' || sign == '-') && isDec(lx.cursor.PeekAt(2)):
			lx.cursor.BumpN(2)
			lx.bumpDigits(isDec)
			kind = token.FloatLit
		}
	}
	return lx.finish(kind, start)
}

// bumpDigits consumes digits and '_' separators placed between digits.
func (lx *Lexer) bumpDigits(digit func(byte) bool) {
	for {
		b := lx.cursor.Peek()
		switch {
		case digit(b):
			lx.cursor.Bump()
		case b == '_' && digit(lx.cursor.PeekAt(1)):
			lx.cursor.BumpN(2)
		default:
			return
		}
	}
}
