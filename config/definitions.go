// Package config loads agent and task definitions from YAML and the runtime settings of the binaries.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bububa/content-agents/schema"
)

const (
	AgentsFile = "agents.yaml"
	TasksFile  = "tasks.yaml"
)

var (
	// ErrMissingKey is returned when a definition is looked up by a name that is not configured
	ErrMissingKey = errors.New("missing configuration key")
	// ErrInvalidDefinition is returned for malformed or incomplete definitions
	ErrInvalidDefinition = errors.New("invalid definition")
)

// AgentConfig is one agent definition
type AgentConfig struct {
	Role      string `yaml:"role" validate:"required"`
	Goal      string `yaml:"goal" validate:"required"`
	Backstory string `yaml:"backstory" validate:"required"`
	// Tools are the tool names the agent may call
	Tools []string `yaml:"tools,omitempty"`
	// Temperature overrides the model temperature
	Temperature *float32 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty" validate:"gte=0"`
	// MaxIterations bounds the function calling loop
	MaxIterations int  `yaml:"max_iter,omitempty" validate:"gte=0"`
	Verbose       bool `yaml:"verbose,omitempty"`
	// AllowDelegation is accepted for compatibility, agents never delegate
	AllowDelegation bool `yaml:"allow_delegation,omitempty"`
}

// TaskConfig is one task definition
type TaskConfig struct {
	Description    string `yaml:"description" validate:"required"`
	ExpectedOutput string `yaml:"expected_output" validate:"required"`
	// Agent is the name of the agent definition performing the task
	Agent string `yaml:"agent" validate:"required"`
	// Context are the names of upstream tasks whose outputs feed this task
	Context []string `yaml:"context,omitempty"`
	// OutputSchema is the name of a registered output schema
	OutputSchema string `yaml:"output_schema,omitempty"`
}

// Definitions is an ordered mapping of symbolic names to definitions
type Definitions[T any] struct {
	names []string
	items map[string]T
}

// Names returns the names in file order
func (d *Definitions[T]) Names() []string {
	return append([]string(nil), d.names...)
}

func (d *Definitions[T]) Len() int {
	return len(d.names)
}

// Lookup returns the definition of name, failing loudly when it is absent
func (d *Definitions[T]) Lookup(name string) (T, error) {
	v, found := d.items[name]
	if !found {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrMissingKey, name)
	}
	return v, nil
}

// Parse decodes a YAML mapping of name to definition.
// Unknown fields, empty documents and definitions missing required fields are errors.
func Parse[T any](data []byte) (*Definitions[T], error) {
	items := make(map[string]T)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	ret := &Definitions[T]{items: items}
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.MappingNode {
		mapping := root.Content[0]
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			ret.names = append(ret.names, mapping.Content[i].Value)
		}
	}
	if len(ret.names) == 0 {
		return nil, fmt.Errorf("%w: no definitions", ErrInvalidDefinition)
	}
	for _, name := range ret.names {
		item := items[name]
		if err := schema.Validate(&item); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, name, err)
		}
	}
	return ret, nil
}

// Config is the complete set of agent and task definitions of a crew
type Config struct {
	Agents *Definitions[AgentConfig]
	Tasks  *Definitions[TaskConfig]
}

// LoadAgents reads agent definitions from path
func LoadAgents(path string) (*Definitions[AgentConfig], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse[AgentConfig](data)
}

// LoadTasks reads task definitions from path
func LoadTasks(path string) (*Definitions[TaskConfig], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse[TaskConfig](data)
}

// Load reads agents.yaml and tasks.yaml from dir
func Load(dir string) (*Config, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads agents.yaml and tasks.yaml from fsys and checks their references
func LoadFS(fsys fs.FS) (*Config, error) {
	agentsData, err := fs.ReadFile(fsys, AgentsFile)
	if err != nil {
		return nil, err
	}
	agentDefs, err := Parse[AgentConfig](agentsData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", AgentsFile, err)
	}
	tasksData, err := fs.ReadFile(fsys, TasksFile)
	if err != nil {
		return nil, err
	}
	taskDefs, err := Parse[TaskConfig](tasksData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TasksFile, err)
	}
	ret := &Config{Agents: agentDefs, Tasks: taskDefs}
	if err := ret.Check(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Check verifies that every task references configured agents and tasks
func (c *Config) Check() error {
	for _, name := range c.Tasks.Names() {
		task, _ := c.Tasks.Lookup(name)
		if _, err := c.Agents.Lookup(task.Agent); err != nil {
			return fmt.Errorf("task %s: agent: %w", name, err)
		}
		for _, dep := range task.Context {
			if _, err := c.Tasks.Lookup(dep); err != nil {
				return fmt.Errorf("task %s: context: %w", name, err)
			}
		}
	}
	return nil
}
