package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

var ErrArguments = errors.New("invalid function arguments")

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s expects 1 argument, got %d", ErrArguments, name, len(args))
		}
		v, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		return fn(v), nil
	}
}

func binary(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s expects 2 arguments, got %d", ErrArguments, name, len(args))
		}
		a, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(args[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func variadic(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: %s expects at least 1 argument", ErrArguments, name)
		}
		ret, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		for _, arg := range args[1:] {
			v, err := toFloat(arg)
			if err != nil {
				return nil, err
			}
			ret = fn(ret, v)
		}
		return ret, nil
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %v is not a number", ErrArguments, v)
}

// Functions are the math functions available in expressions
var Functions = map[string]govaluate.ExpressionFunction{
	"abs":   unary("abs", math.Abs),
	"ceil":  unary("ceil", math.Ceil),
	"floor": unary("floor", math.Floor),
	"round": unary("round", math.Round),
	"sqrt":  unary("sqrt", math.Sqrt),
	"cbrt":  unary("cbrt", math.Cbrt),
	"exp":   unary("exp", math.Exp),
	"ln":    unary("ln", math.Log),
	"log":   unary("log", math.Log10),
	"log2":  unary("log2", math.Log2),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"asin":  unary("asin", math.Asin),
	"acos":  unary("acos", math.Acos),
	"atan":  unary("atan", math.Atan),
	"pow":   binary("pow", math.Pow),
	"mod":   binary("mod", math.Mod),
	"min":   variadic("min", math.Min),
	"max":   variadic("max", math.Max),
	"percent_change": binary("percent_change", func(from, to float64) float64 {
		return (to - from) / from * 100
	}),
}

// Constants are bound in every expression, params of the same name override them
var Constants = map[string]float64{
	"pi":   math.Pi,
	"e":    math.E,
	"phi":  math.Phi,
	"ln2":  math.Ln2,
	"ln10": math.Ln10,
}
