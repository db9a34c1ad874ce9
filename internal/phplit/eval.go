package phplit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"attrsync/internal/locate"
	"attrsync/internal/token"
)

// ErrNotLiteral is returned for expressions outside the literal subset.
var ErrNotLiteral = errors.New("not a literal expression")

// Eval evaluates the expression spanning toks[from..to].
func Eval(toks []token.Token, from, to int) (Value, error) {
	p := parser{toks: toks, pos: from, end: to}
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	if p.skip(); p.pos <= p.end {
		return Value{}, p.fail()
	}
	return v, nil
}

type parser struct {
	toks []token.Token
	pos  int
	end  int
}

func (p *parser) skip() {
	for p.pos <= p.end && locate.Trivia.Has(p.toks[p.pos].Kind) {
		p.pos++
	}
}

func (p *parser) peek() token.Kind {
	p.skip()
	if p.pos > p.end {
		return token.EOF
	}
	return p.toks[p.pos].Kind
}

func (p *parser) fail() error {
	if p.pos > p.end {
		return fmt.Errorf("%w: unexpected end", ErrNotLiteral)
	}
	return fmt.Errorf("%w: unexpected %q", ErrNotLiteral, p.toks[p.pos].Text)
}

func (p *parser) value() (Value, error) {
	switch p.peek() {
	case token.Minus, token.Plus:
		neg := p.toks[p.pos].Kind == token.Minus
		p.pos++
		v, err := p.value()
		if err != nil {
			return Value{}, err
		}
		return negate(v, neg)
	case token.IntLit:
		text := p.toks[p.pos].Text
		p.pos++
		return parseInt(text)
	case token.FloatLit:
		text := p.toks[p.pos].Text
		p.pos++
		f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrNotLiteral, err)
		}
		return FloatValue(f), nil
	case token.StringLit:
		text := p.toks[p.pos].Text
		s, err := Unquote(text)
		if err != nil {
			return Value{}, err
		}
		p.pos++
		return StringValue(s), nil
	case token.Name:
		switch strings.ToLower(p.toks[p.pos].Text) {
		case "true":
			p.pos++
			return BoolValue(true), nil
		case "false":
			p.pos++
			return BoolValue(false), nil
		case "null":
			p.pos++
			return NullValue(), nil
		}
	case token.LBracket:
		p.pos++
		return p.array(token.RBracket)
	case token.KwArray:
		p.pos++
		if p.peek() != token.LParen {
			return Value{}, p.fail()
		}
		p.pos++
		return p.array(token.RParen)
	}
	return Value{}, p.fail()
}

func (p *parser) array(closer token.Kind) (Value, error) {
	v := Value{Kind: Array}
	next := int64(0)
	for {
		if p.peek() == closer {
			p.pos++
			return v, nil
		}
		elem, err := p.value()
		if err != nil {
			return Value{}, err
		}
		key := IntValue(next)
		if p.peek() == token.DoubleArrow {
			p.pos++
			key, err = arrayKey(elem)
			if err != nil {
				return Value{}, err
			}
			if elem, err = p.value(); err != nil {
				return Value{}, err
			}
		}
		if key.Kind == Int && key.Int >= next {
			next = key.Int + 1
		}
		v.Items = setItem(v.Items, key, elem)

		switch p.peek() {
		case token.Comma:
			p.pos++
		case closer:
		default:
			return Value{}, p.fail()
		}
	}
}

// arrayKey applies PHP key coercion: integral strings, floats and bools
// become ints, null the empty string.
func arrayKey(k Value) (Value, error) {
	switch k.Kind {
	case Int:
		return k, nil
	case String:
		if i, err := strconv.ParseInt(k.Str, 10, 64); err == nil && strconv.FormatInt(i, 10) == k.Str {
			return IntValue(i), nil
		}
		return k, nil
	case Float:
		return IntValue(int64(k.Float)), nil
	case Bool:
		if k.Bool {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case Null:
		return StringValue(""), nil
	}
	return Value{}, fmt.Errorf("%w: illegal array key", ErrNotLiteral)
}

func setItem(items []Item, key, val Value) []Item {
	for i := range items {
		if items[i].Key.Kind == key.Kind && items[i].Key.keyString() == key.keyString() {
			items[i].Value = val
			return items
		}
	}
	return append(items, Item{Key: key, Value: val})
}

func negate(v Value, neg bool) (Value, error) {
	if !neg {
		if v.Kind != Int && v.Kind != Float {
			return Value{}, fmt.Errorf("%w: unary plus on non-number", ErrNotLiteral)
		}
		return v, nil
	}
	switch v.Kind {
	case Int:
		if v.Int == math.MinInt64 {
			return FloatValue(-float64(v.Int)), nil
		}
		return IntValue(-v.Int), nil
	case Float:
		return FloatValue(-v.Float), nil
	}
	return Value{}, fmt.Errorf("%w: unary minus on non-number", ErrNotLiteral)
}

func parseInt(text string) (Value, error) {
	clean := strings.ReplaceAll(text, "_", "")
	if len(clean) > 1 && clean[0] == '0' && isDigits(clean[1:]) {
		clean = "0o" + clean[1:]
	}
	i, err := strconv.ParseInt(clean, 0, 64)
	if err == nil {
		return IntValue(i), nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		u, uerr := strconv.ParseUint(clean, 0, 64)
		if uerr == nil {
			return FloatValue(float64(u)), nil
		}
		f, ferr := strconv.ParseFloat(clean, 64)
		if ferr == nil {
			return FloatValue(f), nil
		}
	}
	return Value{}, fmt.Errorf("%w: %v", ErrNotLiteral, err)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ClassRef recognizes "Name::class" in toks[from..to] and returns the index
// of the name token.
func ClassRef(toks []token.Token, from, to int) (int, bool) {
	name := locate.SkipTrivia(toks, from)
	if name > to || !toks[name].Kind.IsName() {
		return -1, false
	}
	dc := locate.SkipTrivia(toks, name+1)
	if dc > to || toks[dc].Kind != token.DoubleColon {
		return -1, false
	}
	cls := locate.SkipTrivia(toks, dc+1)
	if cls != to || !strings.EqualFold(toks[cls].Text, "class") {
		return -1, false
	}
	return name, true
}
