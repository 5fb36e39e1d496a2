package mathverify

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
)

// constants available to every expression
var constants = map[string]interface{}{
	"pi": math.Pi,
	"e":  math.E,
}

// functions is the evaluator's function table
var functions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary("sqrt", math.Sqrt),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"log":   unary("log", math.Log10),
	"ln":    unary("ln", math.Log),
	"exp":   unary("exp", math.Exp),
	"abs":   unary("abs", math.Abs),
	"ceil":  unary("ceil", math.Ceil),
	"floor": unary("floor", math.Floor),
	"round": unary("round", math.Round),
	"pow":   binary("pow", math.Pow),
	"root": binary("root", func(x, n float64) float64 {
		if x < 0 && math.Mod(n, 2) == 1 {
			return -math.Pow(-x, 1/n)
		}
		return math.Pow(x, 1/n)
	}),
}

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s requires exactly 1 argument", name)
		}
		val, err := toFloat64(args[0])
		if err != nil {
			return nil, err
		}
		return fn(val), nil
	}
}

func binary(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s requires exactly 2 arguments", name)
		}
		a, err := toFloat64(args[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat64(args[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

// toFloat64 converts an interface to float64
func toFloat64(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", val)
	}
}

// expression is a compiled answer expression
type expression struct {
	eval *govaluate.EvaluableExpression
	vars []string
}

// compile parses expr. Free variables other than the known constants are
// reported in vars, sorted and deduplicated.
func compile(expr string) (*expression, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	eval, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}

	seen := make(map[string]bool)
	var vars []string
	for _, v := range eval.Vars() {
		if _, ok := constants[v]; ok || seen[v] {
			continue
		}
		seen[v] = true
		vars = append(vars, v)
	}
	sort.Strings(vars)

	return &expression{eval: eval, vars: vars}, nil
}

// evaluate returns the numeric value of the expression for the given
// variable bindings. ok is false when the result is not a finite number.
func (e *expression) evaluate(bindings map[string]float64) (float64, bool) {
	params := make(map[string]interface{}, len(constants)+len(bindings))
	for k, v := range constants {
		params[k] = v
	}
	for k, v := range bindings {
		params[k] = v
	}

	result, err := e.eval.Evaluate(params)
	if err != nil {
		return 0, false
	}

	v, ok := result.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
