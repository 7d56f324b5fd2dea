// Package tools defines the callable capabilities agents expose to the language model.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bububa/content-agents/schema"
)

// ErrTool is the base error for tool failures
var ErrTool = errors.New("tool error")

// Tool is a function the model may call
type Tool interface {
	// Title is the function name exposed to the model
	Title() string
	// Description tells the model when to use the tool
	Description() string
	// Parameters is the JSON Schema of the arguments
	Parameters() json.RawMessage
	// Call runs the tool with JSON encoded arguments and returns the text handed back to the model
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Error provides context for tool invocation failures
type Error struct {
	Tool    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool %q: %s", e.Tool, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err == nil {
		return ErrTool
	}
	return e.Err
}

// Func is a Tool backed by a typed run function
type Func[I any, O schema.Schema] struct {
	Config
	parameters json.RawMessage
	fn         func(context.Context, *I) (O, error)
}

var _ Tool = (*Func[struct{}, schema.String])(nil)

// NewFunc returns a Tool calling fn with arguments decoded into I
func NewFunc[I any, O schema.Schema](fn func(context.Context, *I) (O, error), opts ...Option) *Func[I, O] {
	ret := &Func[I, O]{
		fn:         fn,
		parameters: schema.JSONSchema(new(I)),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	return ret
}

func (t *Func[I, O]) Parameters() json.RawMessage {
	return t.parameters
}

// Run runs the tool with a typed input
func (t *Func[I, O]) Run(ctx context.Context, input *I) (O, error) {
	if fn := t.startHook; fn != nil {
		fn(ctx, t, input)
	}
	out, err := t.fn(ctx, input)
	if err != nil {
		if fn := t.errorHook; fn != nil {
			fn(ctx, t, input, err)
		}
		return out, &Error{Tool: t.Title(), Message: err.Error(), Err: err}
	}
	if fn := t.endHook; fn != nil {
		fn(ctx, t, input, out)
	}
	return out, nil
}

// Call implements Tool
func (t *Func[I, O]) Call(ctx context.Context, args json.RawMessage) (string, error) {
	input := new(I)
	if len(args) > 0 {
		if err := json.Unmarshal(args, input); err != nil {
			return "", &Error{Tool: t.Title(), Message: "invalid arguments: " + err.Error(), Err: ErrTool}
		}
	}
	if err := schema.Validate(input); err != nil {
		return "", &Error{Tool: t.Title(), Message: "invalid arguments: " + err.Error(), Err: fmt.Errorf("%w: %w", ErrTool, err)}
	}
	out, err := t.Run(ctx, input)
	if err != nil {
		return "", err
	}
	return schema.Stringify(out), nil
}
