package markers

import (
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Expr is a parsed marker expression
type Expr interface {
	Evaluate(env Environment) (bool, error)
	String() string
}

// Parse parses a marker expression
func Parse(input string) (Expr, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", tok.text)
	}
	return expr, nil
}

// Evaluate parses marker and evaluates it against env. An empty marker
// is always true.
func Evaluate(marker string, env Environment) (bool, error) {
	if strings.TrimSpace(marker) == "" {
		return true, nil
	}
	expr, err := Parse(marker)
	if err != nil {
		return false, err
	}
	return expr.Evaluate(env)
}

type boolExpr struct {
	op          string // "and" or "or"
	left, right Expr
}

func (e *boolExpr) Evaluate(env Environment) (bool, error) {
	left, err := e.left.Evaluate(env)
	if err != nil {
		return false, err
	}
	if e.op == "and" && !left {
		return false, nil
	}
	if e.op == "or" && left {
		return true, nil
	}
	return e.right.Evaluate(env)
}

func (e *boolExpr) String() string {
	return "(" + e.left.String() + " " + e.op + " " + e.right.String() + ")"
}

type operand struct {
	variable string
	literal  string
}

func (o operand) resolve(env Environment) (string, error) {
	if o.variable == "" {
		return o.literal, nil
	}
	value, ok := env[o.variable]
	if !ok {
		return "", fmt.Errorf("%w: %s is not set in the environment", ErrUnknownVariable, o.variable)
	}
	return value, nil
}

func (o operand) String() string {
	if o.variable != "" {
		return o.variable
	}
	return `"` + o.literal + `"`
}

type compareExpr struct {
	left, right operand
	op          string
}

func (e *compareExpr) Evaluate(env Environment) (bool, error) {
	lhs, err := e.left.resolve(env)
	if err != nil {
		return false, err
	}
	rhs, err := e.right.resolve(env)
	if err != nil {
		return false, err
	}
	return compare(lhs, e.op, rhs)
}

func (e *compareExpr) String() string {
	return e.left.String() + " " + e.op + " " + e.right.String()
}

func compare(lhs, op, rhs string) (bool, error) {
	switch op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	case "===":
		return lhs == rhs, nil
	}

	if result, ok := compareVersions(lhs, op, rhs); ok {
		return result, nil
	}

	switch op {
	case "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "<":
		return lhs < rhs, nil
	case "<=":
		return lhs <= rhs, nil
	case ">":
		return lhs > rhs, nil
	case ">=":
		return lhs >= rhs, nil
	}
	return false, fmt.Errorf("%w: %q %s %q", ErrUndefinedComparison, lhs, op, rhs)
}

// compareVersions applies PEP 440 semantics when "op rhs" is a valid
// specifier and lhs a valid version. ok is false when either is not.
func compareVersions(lhs, op, rhs string) (result bool, ok bool) {
	spec, err := pep440.NewSpecifiers(op + rhs)
	if err != nil {
		return false, false
	}
	v, err := pep440.Parse(lhs)
	if err != nil {
		return false, false
	}
	return spec.Check(v), true
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s in %q", ErrInvalidMarker, fmt.Sprintf(format, args...), p.input)
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &boolExpr{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = &boolExpr{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAtom() (Expr, error) {
	if p.peek().kind == tokLParen {
		p.next()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != tokRParen {
			return nil, p.errorf("expected \")\"")
		}
		return expr, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &compareExpr{left: left, op: op, right: right}, nil
}

func (p *parser) parseOperand() (operand, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return operand{literal: tok.text}, nil
	case tokVariable:
		name, ok := canonicalVariable(tok.text)
		if !ok {
			return operand{}, fmt.Errorf("%w: %s", ErrUnknownVariable, tok.text)
		}
		return operand{variable: name}, nil
	case tokEOF:
		return operand{}, p.errorf("unexpected end of marker")
	default:
		return operand{}, p.errorf("expected a variable or quoted string, got %q", tok.text)
	}
}

func (p *parser) parseOperator() (string, error) {
	tok := p.next()
	switch tok.kind {
	case tokOp, tokIn:
		return tok.text, nil
	case tokNot:
		if p.next().kind != tokIn {
			return "", p.errorf(`expected "in" after "not"`)
		}
		return "not in", nil
	default:
		return "", p.errorf("expected a comparison operator, got %q", tok.text)
	}
}
