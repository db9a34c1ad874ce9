// Package phplit evaluates the literal subset of PHP that test metadata is
// written in, decodes the JSON rows of doc comment tables, and renders both
// back to text.
//
// Only constant data is supported: strings, integers, floats, true, false,
// null, unary signs and (possibly keyed, possibly nested) arrays. Anything
// else is rejected with ErrNotLiteral.
package phplit

import (
	"sort"
	"strconv"
	"strings"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Array
)

type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Items []Item
}

// Item is one array element. Key is an Int or String value.
type Item struct {
	Key   Value
	Value Value
}

func NullValue() Value           { return Value{Kind: Null} }
func BoolValue(b bool) Value     { return Value{Kind: Bool, Bool: b} }
func IntValue(i int64) Value     { return Value{Kind: Int, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ListValue builds an array with keys 0..n-1.
func ListValue(vals ...Value) Value {
	v := Value{Kind: Array, Items: make([]Item, 0, len(vals))}
	for i, x := range vals {
		v.Items = append(v.Items, Item{Key: IntValue(int64(i)), Value: x})
	}
	return v
}

// IsList reports whether v is an array whose keys are 0..n-1 in order.
func (v Value) IsList() bool {
	if v.Kind != Array {
		return false
	}
	for i, it := range v.Items {
		if it.Key.Kind != Int || it.Key.Int != int64(i) {
			return false
		}
	}
	return true
}

// HasStringKeys reports whether v or any nested array uses a string key.
func (v Value) HasStringKeys() bool {
	if v.Kind != Array {
		return false
	}
	for _, it := range v.Items {
		if it.Key.Kind == String || it.Value.HasStringKeys() {
			return true
		}
	}
	return false
}

// Equal reports deep equality. Arrays compare keys and values; key order
// matters for lists only.
func (v Value) Equal(o Value) bool {
	return v.JSON() == o.JSON()
}

// JSON renders v as JSON with ", " separators. Lists become arrays, other
// arrays objects with sorted keys. Whole floats keep a ".0" suffix so they
// stay distinct from integers.
func (v Value) JSON() string {
	var sb strings.Builder
	v.writeJSON(&sb)
	return sb.String()
}

func (v Value) writeJSON(sb *strings.Builder) {
	switch v.Kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case Int:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case Float:
		sb.WriteString(formatFloat(v.Float))
	case String:
		sb.WriteString(strconv.Quote(v.Str))
	case Array:
		if v.IsList() {
			sb.WriteByte('[')
			for i, it := range v.Items {
				if i > 0 {
					sb.WriteString(", ")
				}
				it.Value.writeJSON(sb)
			}
			sb.WriteByte(']')
			return
		}
		items := append([]Item(nil), v.Items...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Key.keyString() < items[j].Key.keyString() })
		sb.WriteByte('{')
		for i, it := range items {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(it.Key.keyString()))
			sb.WriteString(": ")
			it.Value.writeJSON(sb)
		}
		sb.WriteByte('}')
	}
}

func (v Value) keyString() string {
	if v.Kind == Int {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Str
}

// PHP renders v as a PHP literal using short array syntax.
func (v Value) PHP() string {
	var sb strings.Builder
	v.writePHP(&sb)
	return sb.String()
}

func (v Value) writePHP(sb *strings.Builder) {
	switch v.Kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case Int:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case Float:
		sb.WriteString(formatFloat(v.Float))
	case String:
		sb.WriteString(Quote(v.Str))
	case Array:
		list := v.IsList()
		sb.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if !list {
				it.Key.writePHP(sb)
				sb.WriteString(" => ")
			}
			it.Value.writePHP(sb)
		}
		sb.WriteByte(']')
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
