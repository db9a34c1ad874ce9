package phplit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unquote decodes a single or double quoted PHP string literal. Double
// quoted strings with interpolation are rejected.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != lit[len(lit)-1] || (lit[0] != '\'' && lit[0] != '"') {
		return "", fmt.Errorf("%w: %s is not a string literal", ErrNotLiteral, lit)
	}
	body := lit[1 : len(lit)-1]
	if lit[0] == '\'' {
		return unquoteSingle(body), nil
	}
	return unquoteDouble(body)
}

func unquoteSingle(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			i++
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}

func unquoteDouble(body string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '$' && i+1 < len(body) && (isNameStart(body[i+1]) || body[i+1] == '{') {
			return "", fmt.Errorf("%w: interpolated string", ErrNotLiteral)
		}
		if c == '{' && i+1 < len(body) && body[i+1] == '$' {
			return "", fmt.Errorf("%w: interpolated string", ErrNotLiteral)
		}
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'v':
			sb.WriteByte('\v')
		case 'e':
			sb.WriteByte(0x1b)
		case 'f':
			sb.WriteByte('\f')
		case '\\', '$', '"':
			sb.WriteByte(e)
		case 'x':
			j := i + 1
			for j < len(body) && j < i+3 && isHexDigit(body[j]) {
				j++
			}
			if j == i+1 {
				sb.WriteString(`\x`)
				continue
			}
			n, _ := strconv.ParseUint(body[i+1:j], 16, 8)
			sb.WriteByte(byte(n))
			i = j - 1
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					return "", fmt.Errorf("%w: bad unicode escape", ErrNotLiteral)
				}
				n, err := strconv.ParseUint(body[i+2:i+end], 16, 32)
				if err != nil || n > utf8.MaxRune {
					return "", fmt.Errorf("%w: bad unicode escape", ErrNotLiteral)
				}
				sb.WriteRune(rune(n))
				i += end
				continue
			}
			sb.WriteString(`\u`)
		default:
			if e >= '0' && e <= '7' {
				j := i
				for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '7' {
					j++
				}
				n, _ := strconv.ParseUint(body[i:j], 8, 16)
				sb.WriteByte(byte(n))
				i = j - 1
				continue
			}
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String(), nil
}

// Quote returns s as a single quoted PHP literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '\'' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('\'')
	return sb.String()
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
