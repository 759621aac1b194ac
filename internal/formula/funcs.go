package formula

import (
	"fmt"
	"math"
)

// builtinConstants are always in scope for every formula.
var builtinConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type function struct {
	minArgs int
	maxArgs int // -1 = variadic
	impl    func(args []float64) (float64, error)
}

func (f function) apply(args []float64) (float64, error) {
	if len(args) < f.minArgs || (f.maxArgs >= 0 && len(args) > f.maxArgs) {
		return 0, &EvaluationError{Msg: fmt.Sprintf("wrong argument count %d", len(args))}
	}
	return f.impl(args)
}

func fn1(impl func(float64) (float64, error)) function {
	return function{minArgs: 1, maxArgs: 1, impl: func(args []float64) (float64, error) {
		return impl(args[0])
	}}
}

// functions is the fixed function library. Formulas cannot call anything
// outside this table.
var functions = map[string]function{
	"sqrt": fn1(func(x float64) (float64, error) {
		if x < 0 {
			return 0, &EvaluationError{Msg: fmt.Sprintf("sqrt of negative value %g", x)}
		}
		return math.Sqrt(x), nil
	}),
	"abs": fn1(func(x float64) (float64, error) { return math.Abs(x), nil }),
	"sin": fn1(func(x float64) (float64, error) { return math.Sin(x), nil }),
	"cos": fn1(func(x float64) (float64, error) { return math.Cos(x), nil }),
	"tan": fn1(func(x float64) (float64, error) { return math.Tan(x), nil }),
	"asin": fn1(func(x float64) (float64, error) {
		if x < -1 || x > 1 {
			return 0, &EvaluationError{Msg: fmt.Sprintf("asin of %g outside [-1,1]", x)}
		}
		return math.Asin(x), nil
	}),
	"acos": fn1(func(x float64) (float64, error) {
		if x < -1 || x > 1 {
			return 0, &EvaluationError{Msg: fmt.Sprintf("acos of %g outside [-1,1]", x)}
		}
		return math.Acos(x), nil
	}),
	"atan":  fn1(func(x float64) (float64, error) { return math.Atan(x), nil }),
	"ceil":  fn1(func(x float64) (float64, error) { return math.Ceil(x), nil }),
	"floor": fn1(func(x float64) (float64, error) { return math.Floor(x), nil }),
	"round": fn1(func(x float64) (float64, error) { return math.Round(x), nil }),
	"exp":   fn1(func(x float64) (float64, error) { return math.Exp(x), nil }),
	"ln": fn1(func(x float64) (float64, error) {
		if x <= 0 {
			return 0, &EvaluationError{Msg: fmt.Sprintf("ln of non-positive value %g", x)}
		}
		return math.Log(x), nil
	}),
	"log": fn1(func(x float64) (float64, error) {
		if x <= 0 {
			return 0, &EvaluationError{Msg: fmt.Sprintf("log of non-positive value %g", x)}
		}
		return math.Log10(x), nil
	}),
	"pow": {minArgs: 2, maxArgs: 2, impl: func(args []float64) (float64, error) {
		res := math.Pow(args[0], args[1])
		if math.IsNaN(res) {
			return 0, &EvaluationError{Msg: "invalid exponentiation"}
		}
		return res, nil
	}},
	"min": {minArgs: 2, maxArgs: -1, impl: func(args []float64) (float64, error) {
		m := args[0]
		for _, a := range args[1:] {
			if a < m {
				m = a
			}
		}
		return m, nil
	}},
	"max": {minArgs: 2, maxArgs: -1, impl: func(args []float64) (float64, error) {
		m := args[0]
		for _, a := range args[1:] {
			if a > m {
				m = a
			}
		}
		return m, nil
	}},
	// if(cond, then, else): cond is any non-zero value
	"if": {minArgs: 3, maxArgs: 3, impl: func(args []float64) (float64, error) {
		if args[0] != 0 {
			return args[1], nil
		}
		return args[2], nil
	}},
}
