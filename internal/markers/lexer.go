package markers

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokVariable
	tokString
	tokOp
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokIn
)

type token struct {
	kind tokenKind
	text string
}

// longest first so "===" wins over "=="
var operators = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(input[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string in %q", ErrInvalidMarker, input)
			}
			tokens = append(tokens, token{kind: tokString, text: input[i+1 : i+1+end]})
			i += end + 2
		case isIdentStart(c):
			j := i + 1
			for j < len(input) && isIdentPart(input[j]) {
				j++
			}
			word := input[i:j]
			tokens = append(tokens, keywordOrVariable(word))
			i = j
		default:
			op := matchOperator(input[i:])
			if op == "" {
				return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrInvalidMarker, c, input)
			}
			tokens = append(tokens, token{kind: tokOp, text: op})
			i += len(op)
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

func keywordOrVariable(word string) token {
	switch word {
	case "and":
		return token{kind: tokAnd, text: word}
	case "or":
		return token{kind: tokOr, text: word}
	case "not":
		return token{kind: tokNot, text: word}
	case "in":
		return token{kind: tokIn, text: word}
	}
	return token{kind: tokVariable, text: word}
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// dots allow the legacy "os.name" spelling
func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}
