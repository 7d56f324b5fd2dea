package agents

// FunctionChoice controls whether the model may call tools
type FunctionChoice int

const (
	// AutoFunctionChoice lets the model decide
	AutoFunctionChoice FunctionChoice = iota
	// NoneFunctionChoice does not advertise any tool
	NoneFunctionChoice
	// RequiredFunctionChoice forces a tool call on the first request, then falls back to auto
	RequiredFunctionChoice
)

func (c FunctionChoice) String() string {
	switch c {
	case NoneFunctionChoice:
		return "none"
	case RequiredFunctionChoice:
		return "required"
	default:
		return "auto"
	}
}

// ParseFunctionChoice parses auto, none or required; anything else is auto
func ParseFunctionChoice(v string) FunctionChoice {
	switch v {
	case "none":
		return NoneFunctionChoice
	case "required":
		return RequiredFunctionChoice
	default:
		return AutoFunctionChoice
	}
}
