package cot

import "github.com/bububa/content-agents/components/systemprompt"

type Option func(g *Generator)

// WithBackground appends lines to IDENTITY and PURPOSE
func WithBackground(lines ...string) Option {
	return func(g *Generator) {
		g.background = append(g.background, systemprompt.Bullets(lines...)...)
	}
}

// WithSteps appends lines to INTERNAL ASSISTANT STEPS
func WithSteps(lines ...string) Option {
	return func(g *Generator) {
		g.steps = append(g.steps, systemprompt.Bullets(lines...)...)
	}
}

// WithOutputInstructs appends lines to OUTPUT INSTRUCTIONS, before the JSON instructions
func WithOutputInstructs(lines ...string) Option {
	return func(g *Generator) {
		g.outputInstructs = append(g.outputInstructs, systemprompt.Bullets(lines...)...)
	}
}

func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
