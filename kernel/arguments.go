package kernel

import (
	"regexp"

	"github.com/bububa/content-agents/agents"
)

var variableRegex = regexp.MustCompile(`\{\{\s*\$([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// ExecutionSettings are the prompt execution settings
type ExecutionSettings struct {
	FunctionChoice agents.FunctionChoice
	// Temperature overrides the kernel temperature when set
	Temperature *float32
	// MaxTokens overrides the kernel max tokens when positive
	MaxTokens int
}

// Arguments are the execution settings and template values of one invocation
type Arguments struct {
	Settings ExecutionSettings
	Values   map[string]string
}

func NewArguments(settings ExecutionSettings, values map[string]string) *Arguments {
	return &Arguments{Settings: settings, Values: values}
}

// Render replaces {{$name}} variables with their values.
// Variables without a value are kept verbatim and returned as missing.
func Render(prompt string, values map[string]string) (string, []string) {
	var missing []string
	ret := variableRegex.ReplaceAllStringFunc(prompt, func(match string) string {
		name := variableRegex.FindStringSubmatch(match)[1]
		if v, found := values[name]; found {
			return v
		}
		missing = append(missing, name)
		return match
	})
	return ret, missing
}
