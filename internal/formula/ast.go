package formula

import "math"

// node is an immutable AST node. Evaluation walks the tree against a
// variable binding map; there is no runtime execution of user text.
type node interface {
	eval(env map[string]float64) (float64, error)
	collectVars(seen map[string]bool)
}

type numberNode struct {
	value float64
}

func (n numberNode) eval(map[string]float64) (float64, error) { return n.value, nil }
func (n numberNode) collectVars(map[string]bool)              {}

type varNode struct {
	name string
}

func (n varNode) eval(env map[string]float64) (float64, error) {
	if v, ok := env[n.name]; ok {
		return v, nil
	}
	if v, ok := builtinConstants[n.name]; ok {
		return v, nil
	}
	return 0, &UnknownVariableError{Name: n.name}
}

func (n varNode) collectVars(seen map[string]bool) {
	if _, builtin := builtinConstants[n.name]; !builtin {
		seen[n.name] = true
	}
}

type unaryNode struct {
	op      string
	operand node
}

func (n unaryNode) eval(env map[string]float64) (float64, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return 0, err
	}
	if n.op == "-" {
		return -v, nil
	}
	return v, nil
}

func (n unaryNode) collectVars(seen map[string]bool) { n.operand.collectVars(seen) }

type binaryNode struct {
	op          string
	left, right node
}

func (n binaryNode) eval(env map[string]float64) (float64, error) {
	l, err := n.left.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, &EvaluationError{Msg: "division by zero"}
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, &EvaluationError{Msg: "modulo by zero"}
		}
		return math.Mod(l, r), nil
	case "^":
		res := math.Pow(l, r)
		if math.IsNaN(res) {
			return 0, &EvaluationError{Msg: "invalid exponentiation"}
		}
		return res, nil
	case "<":
		return boolVal(l < r), nil
	case "<=":
		return boolVal(l <= r), nil
	case ">":
		return boolVal(l > r), nil
	case ">=":
		return boolVal(l >= r), nil
	case "==":
		return boolVal(l == r), nil
	case "!=":
		return boolVal(l != r), nil
	}
	return 0, &EvaluationError{Msg: "unknown operator " + n.op}
}

func (n binaryNode) collectVars(seen map[string]bool) {
	n.left.collectVars(seen)
	n.right.collectVars(seen)
}

type callNode struct {
	name string
	args []node
}

func (n callNode) eval(env map[string]float64) (float64, error) {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	fn, ok := functions[n.name]
	if !ok {
		return 0, &EvaluationError{Msg: "unknown function " + n.name}
	}
	return fn.apply(args)
}

func (n callNode) collectVars(seen map[string]bool) {
	for _, a := range n.args {
		a.collectVars(seen)
	}
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
