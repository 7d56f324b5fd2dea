package agents

import (
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/atomic"

	"github.com/bububa/content-agents/tools"
)

type registeredTool struct {
	tool  tools.Tool
	calls *atomic.Int64
}

// Toolset is a named set of tools advertised to the model.
// The set is fixed after construction, invocation counters are safe for concurrent use.
type Toolset struct {
	names []string
	tools map[string]registeredTool
}

// NewToolset registers list under their own titles
func NewToolset(list ...tools.Tool) (*Toolset, error) {
	ret := &Toolset{tools: make(map[string]registeredTool, len(list))}
	for _, t := range list {
		if err := ret.Add(t.Title(), t); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Add registers t under name
func (s *Toolset) Add(name string, t tools.Tool) error {
	if name == "" {
		return fmt.Errorf("%w: tool without name", ErrAgent)
	}
	if _, found := s.tools[name]; found {
		return fmt.Errorf("%w: duplicate tool %q", ErrAgent, name)
	}
	s.names = append(s.names, name)
	s.tools[name] = registeredTool{tool: t, calls: atomic.NewInt64(0)}
	return nil
}

// Len returns the number of tools
func (s *Toolset) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the registered names in registration order
func (s *Toolset) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Get returns the tool registered under name
func (s *Toolset) Get(name string) (tools.Tool, bool) {
	if s == nil {
		return nil, false
	}
	rt, found := s.tools[name]
	return rt.tool, found
}

// Calls returns how many times the tool registered under name was invoked
func (s *Toolset) Calls(name string) int64 {
	if s == nil {
		return 0
	}
	if rt, found := s.tools[name]; found {
		return rt.calls.Load()
	}
	return 0
}

// Stats returns invocation counters by tool name
func (s *Toolset) Stats() map[string]int64 {
	ret := make(map[string]int64, s.Len())
	for _, name := range s.Names() {
		ret[name] = s.Calls(name)
	}
	return ret
}

// OpenAI returns the go-openai tool definitions sorted by name
func (s *Toolset) OpenAI() []openai.Tool {
	if s.Len() == 0 {
		return nil
	}
	names := s.Names()
	sort.Strings(names)
	ret := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		t := s.tools[name].tool
		ret = append(ret, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return ret
}
