package phplit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidJSON is returned by DecodeJSON for malformed input.
var ErrInvalidJSON = errors.New("invalid JSON")

// DecodeJSON decodes one JSON document keeping object key order, the way
// json_decode($s, true) builds a PHP array. Integral numbers become Int.
func DecodeJSON(s string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data", ErrInvalidJSON)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return IntValue(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	case json.Delim:
		v := Value{Kind: Array}
		switch t {
		case '[':
			for i := int64(0); dec.More(); i++ {
				elem, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, Item{Key: IntValue(i), Value: elem})
			}
		case '{':
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := kt.(string)
				k, _ := arrayKey(StringValue(key))
				elem, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = setItem(v.Items, k, elem)
			}
		}
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return v, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
