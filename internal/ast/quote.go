package ast

import "strings"

// QuoteSource quotes the body of a source string literal. Escape sequences
// in body are kept as written.
func QuoteSource(body string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '\\':
			b.WriteByte(c)
			if i+1 < len(body) {
				i++
				if body[i] == '\n' {
					b.WriteString("n")
				} else {
					b.WriteByte(body[i])
				}
			}
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// IsIdentName reports whether s can be written as an unquoted property key.
func IsIdentName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
