// Package formula parses and evaluates scalar math expressions over a named
// variable environment. Formula text is compiled into an immutable AST once
// and evaluated many times; evaluation is pure and deterministic, so the
// same bindings always produce the same result bit for bit.
package formula

import (
	"fmt"
	"sort"
)

// Expr is a parsed, immutable expression.
type Expr struct {
	root node
	src  string
}

// Parse compiles formula text into an Expr. Malformed text returns a
// *SyntaxError.
func Parse(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: fmt.Sprintf("unexpected %q", p.peek().text)}
	}
	return &Expr{root: root, src: src}, nil
}

// Source returns the original formula text.
func (e *Expr) Source() string { return e.src }

// Variables returns the sorted set of variable names the expression
// references, excluding builtin constants.
func (e *Expr) Variables() []string {
	seen := make(map[string]bool)
	e.root.collectVars(seen)
	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// Eval evaluates the expression against the given bindings.
func (e *Expr) Eval(bindings map[string]float64) (float64, error) {
	return e.root.eval(bindings)
}

// Validate parses the formula and checks that every referenced variable is
// either an allowed parameter name or a declared constant. This runs at
// definition time so that authoring mistakes surface before a formula is
// ever evaluated.
func Validate(src string, paramNames []string, constants map[string]float64) error {
	expr, err := Parse(src)
	if err != nil {
		return err
	}
	allowed := make(map[string]bool, len(paramNames))
	for _, n := range paramNames {
		allowed[n] = true
	}
	for _, v := range expr.Variables() {
		if allowed[v] {
			continue
		}
		if _, ok := constants[v]; ok {
			continue
		}
		return &UnknownVariableError{Name: v}
	}
	// Unknown function names are caught at parse time by the grammar only
	// when called; check them here too so publishing fails early.
	return checkFunctions(expr.root)
}

func checkFunctions(n node) error {
	switch t := n.(type) {
	case callNode:
		if _, ok := functions[t.name]; !ok {
			return &SyntaxError{Msg: fmt.Sprintf("unknown function %q", t.name)}
		}
		for _, a := range t.args {
			if err := checkFunctions(a); err != nil {
				return err
			}
		}
	case unaryNode:
		return checkFunctions(t.operand)
	case binaryNode:
		if err := checkFunctions(t.left); err != nil {
			return err
		}
		return checkFunctions(t.right)
	}
	return nil
}

// parser is a recursive-descent parser over the token stream.
//
// Precedence, loosest to tightest:
//
//	comparison  < <= > >= == !=
//	additive    + -
//	multiplicative * / %
//	unary       - +
//	power       ^ (right associative)
//	primary     number, variable, call, parenthesized
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokCmp {
		op := p.next().text
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/" || p.peek().text == "%") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokOp && (p.peek().text == "-" || p.peek().text == "+") {
		op := p.next().text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokOp && p.peek().text == "^" {
		p.next()
		// Right associative: 2^3^2 == 2^(3^2)
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: "^", left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return numberNode{value: t.num}, nil
	case tokIdent:
		p.next()
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		return varNode{name: t.text}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expected )"}
		}
		p.next()
		return inner, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

func (p *parser) parseCall(name token) (node, error) {
	p.next() // consume (
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind == tokComma {
				p.next()
				continue
			}
			break
		}
	}
	if p.peek().kind != tokRParen {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expected ) after arguments"}
	}
	p.next()
	return callNode{name: name.text, args: args}, nil
}
