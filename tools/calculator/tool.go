// Package calculator evaluates mathematical expressions for the analyst agents
package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/bububa/content-agents/tools"
)

var ErrEmptyExpression = errors.New("empty expression")

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as more
// complex operations like exponentiation and trigonometric functions.
// Use this tool to evaluate mathematical expressions.
type Input struct {
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" jsonschema:"title=expression,description=Mathematical expression to evaluate. For example, '2 + 2'."`
	// Params represents expressions's parameters
	Params map[string]interface{} `json:"params,omitempty" jsonschema:"title=params,description=Named parameters referenced by the expression."`
}

func NewInput(exp string, params map[string]interface{}) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the calculator
type Output struct {
	// Expression is the evaluated expression
	Expression string `json:"expression"`
	// Result Result of the calculation
	Result interface{} `json:"result"`
}

func (o Output) String() string {
	bs, _ := json.Marshal(o)
	return string(bs)
}

type Tool struct {
	*tools.Func[Input, *Output]
}

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	opts = append([]tools.Option{
		tools.WithTitle("calculate"),
		tools.WithDescription("Evaluate a mathematical expression. Supports arithmetic, comparison, and functions such as sqrt, pow, min, max, round and percent_change."),
	}, opts...)
	ret.Func = tools.NewFunc(ret.Run, opts...)
	return ret
}

// Run evaluates input.Expression with constants and params bound
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	expression := strings.TrimSpace(input.Expression)
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(expression, Functions)
	if err != nil {
		return nil, err
	}
	params := make(map[string]interface{}, len(input.Params)+len(Constants))
	for k, v := range Constants {
		params[k] = v
	}
	for k, v := range input.Params {
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return nil, err
	}
	if v, ok := result.(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return nil, errors.New("result is not a finite number")
	}
	return &Output{Expression: expression, Result: result}, nil
}
