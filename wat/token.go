package wat

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokAtom
	tokString
)

type token struct {
	text string
	line int
	kind tokenKind
}

// tokenize splits source into parentheses, atoms and string literals.
// Line comments (;;) and nestable block comments (; ;) are dropped.
// String escapes are decoded here so later stages see raw bytes.
func tokenize(src string) ([]token, error) {
	var toks []token
	line := 1
	i := 0
	for i < len(src) {
		switch c := src[i]; {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == ';':
			if i+1 < len(src) && src[i+1] == ';' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
				continue
			}
			return nil, fmt.Errorf("line %d: unexpected %q", line, ";")
		case c == '(':
			if i+1 < len(src) && src[i+1] == ';' {
				rest, endLine, err := skipBlockComment(src[i+2:], line)
				if err != nil {
					return nil, err
				}
				i = len(src) - len(rest)
				line = endLine
				continue
			}
			toks = append(toks, token{kind: tokLParen, line: line})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, line: line})
			i++
		case c == '"':
			text, rest, err := scanString(src[i+1:], line)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: text, line: line})
			i = len(src) - len(rest)
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \t\r\n();\"", rune(src[j])) {
				j++
			}
			toks = append(toks, token{kind: tokAtom, text: src[i:j], line: line})
			i = j
		}
	}
	return toks, nil
}

func skipBlockComment(s string, line int) (rest string, endLine int, err error) {
	depth := 1
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '\n':
			line++
			i++
		case s[i] == '(' && i+1 < len(s) && s[i+1] == ';':
			depth++
			i += 2
		case s[i] == ';' && i+1 < len(s) && s[i+1] == ')':
			depth--
			i += 2
			if depth == 0 {
				return s[i:], line, nil
			}
		default:
			i++
		}
	}
	return "", line, fmt.Errorf("line %d: unterminated block comment", line)
}

func scanString(s string, line int) (text, rest string, err error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		switch c := s[i]; c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\n':
			return "", "", fmt.Errorf("line %d: unterminated string", line)
		case '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("line %d: unterminated escape", line)
			}
			switch e := s[i+1]; e {
			case '"', '\\', '\'':
				b.WriteByte(e)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				hi, ok1 := hexDigit(e)
				var lo byte
				var ok2 bool
				if i+2 < len(s) {
					lo, ok2 = hexDigit(s[i+2])
				}
				if !ok1 || !ok2 {
					return "", "", fmt.Errorf("line %d: bad escape \\%c", line, e)
				}
				b.WriteByte(hi<<4 | lo)
				i++
			}
			i += 2
			continue
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", "", fmt.Errorf("line %d: unterminated string", line)
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
