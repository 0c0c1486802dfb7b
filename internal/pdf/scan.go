package pdf

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ScanText is a lexical fallback for PDFs the structured reader cannot open.
// The bytes are read as Latin-1 and every string literal directly followed
// by a Tj operator inside a BT ... ET block is collected, one per line.
//
// Only balanced nested parentheses and the \( \) \\ escapes are understood.
// TJ arrays, octal escapes and compressed content streams are not handled.
func ScanText(data []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		decoded = data
	}
	src := string(decoded)

	var out []string
	for {
		start := indexOperator(src, "BT")
		if start < 0 {
			break
		}
		rest := src[start+2:]
		end := indexOperator(rest, "ET")
		if end < 0 {
			end = len(rest)
		}
		out = append(out, scanBlock(rest[:end])...)
		if end == len(rest) {
			break
		}
		src = rest[end+2:]
	}

	return strings.Join(out, "\n")
}

// scanBlock returns the literals followed by Tj within one text object.
func scanBlock(block string) []string {
	var found []string
	for i := 0; i < len(block); i++ {
		if block[i] != '(' {
			continue
		}
		lit, next, ok := readLiteral(block, i)
		if !ok {
			break
		}
		i = next - 1
		if strings.HasPrefix(strings.TrimLeft(block[next:], " \t\r\n"), "Tj") && lit != "" {
			found = append(found, lit)
		}
	}
	return found
}

// readLiteral reads a string literal starting at the '(' at pos. It returns
// the unescaped text and the index just past the closing ')'.
func readLiteral(s string, pos int) (string, int, bool) {
	var buf strings.Builder
	depth := 0
	for i := pos; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			next := s[i+1]
			if next == '(' || next == ')' || next == '\\' {
				buf.WriteByte(next)
			} else {
				buf.WriteByte(c)
				buf.WriteByte(next)
			}
			i++
		case c == '(':
			if depth > 0 {
				buf.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return buf.String(), i + 1, true
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
	return "", len(s), false
}

// indexOperator finds op as a standalone token.
func indexOperator(s, op string) int {
	from := 0
	for {
		i := strings.Index(s[from:], op)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(op)
		if (i == 0 || isDelimiter(s[i-1])) && (end == len(s) || isDelimiter(s[end])) {
			return i
		}
		from = i + 1
	}
}

func isDelimiter(c byte) bool {
	return bytes.IndexByte([]byte(" \t\r\n\f\x00()<>[]{}/%"), c) >= 0
}
