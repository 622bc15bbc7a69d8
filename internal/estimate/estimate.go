// Package estimate evaluates task time-estimate expressions.
//
// An estimate is either a plain number of minutes ("120") or a formula
// over the order's engine count, written with the literal N or n
// ("N*5", "(N+1)*15"). Formulas are evaluated under a deliberately
// restricted grammar:
//
//	expr   = term { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = integer | "(" expr ")" | "-" factor
//
// Nothing outside that grammar evaluates - no identifiers other than
// the substituted engine count, no function calls, no side effects.
// The predecessor fed the raw formula string to a general evaluator;
// this package exists so catalog data can never execute code.
package estimate

import (
	"fmt"
	"strconv"
	"strings"
)

// Error is a formula-evaluation failure. It blocks submission of the
// affected task only; other tasks proceed.
type Error struct {
	Expr    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("estimate %q: %s", e.Expr, e.Message)
}

// Minutes resolves an estimate expression to whole minutes.
//
// A plain integer passes through untouched. Anything else has N/n
// substituted with the engine count and is evaluated under the
// restricted grammar. Malformed formulas, unconsumed trailing input and
// division by zero all return *Error.
func Minutes(expr string, engineCount int) (int64, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return 0, &Error{Expr: expr, Message: "empty expression"}
	}

	// Plain numeric estimates skip formula evaluation entirely.
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, nil
	}

	substituted := substituteEngines(trimmed, engineCount)

	p := &parser{input: substituted, expr: expr}
	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, &Error{Expr: expr, Message: fmt.Sprintf("unexpected %q at offset %d", p.input[p.pos], p.pos)}
	}
	return result, nil
}

// Check validates an estimate expression without needing a real engine
// count. Used by the catalog compiler to reject bad formulas at load
// time instead of at submission time.
func Check(expr string) error {
	_, err := Minutes(expr, 1)
	return err
}

// substituteEngines replaces every N/n literal with the engine count.
func substituteEngines(expr string, engineCount int) string {
	count := strconv.Itoa(engineCount)
	expr = strings.ReplaceAll(expr, "N", count)
	return strings.ReplaceAll(expr, "n", count)
}

// parser is a recursive-descent evaluator over the restricted grammar.
// It evaluates as it parses; there is no AST.
type parser struct {
	input string
	expr  string // original expression, for error messages
	pos   int
}

func (p *parser) parseExpr() (int64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peek('+'):
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.peek('-'):
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (int64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peek('*'):
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.peek('/'):
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, &Error{Expr: p.expr, Message: "division by zero"}
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseFactor() (int64, error) {
	p.skipSpace()

	if p.peek('-') {
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}

	if p.peek('(') {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.peek(')') {
			return 0, &Error{Expr: p.expr, Message: "missing closing parenthesis"}
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		if p.pos < len(p.input) {
			return 0, &Error{Expr: p.expr, Message: fmt.Sprintf("unexpected %q at offset %d", p.input[p.pos], p.pos)}
		}
		return 0, &Error{Expr: p.expr, Message: "unexpected end of expression"}
	}

	v, err := strconv.ParseInt(p.input[start:p.pos], 10, 64)
	if err != nil {
		return 0, &Error{Expr: p.expr, Message: "number out of range"}
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek(c byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == c
}
