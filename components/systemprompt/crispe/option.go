package crispe

import "github.com/bububa/content-agents/components/systemprompt"

type Option func(g *Generator)

// WithCapacities appends lines to CAPACITY and ROLE
func WithCapacities(lines ...string) Option {
	return func(g *Generator) {
		g.capacities = append(g.capacities, systemprompt.Bullets(lines...)...)
	}
}

// WithBackground appends lines to INSIGHT and PURPOSE
func WithBackground(lines ...string) Option {
	return func(g *Generator) {
		g.background = append(g.background, systemprompt.Bullets(lines...)...)
	}
}

// WithStatements appends lines to STATEMENT and TASK
func WithStatements(lines ...string) Option {
	return func(g *Generator) {
		g.statements = append(g.statements, systemprompt.Bullets(lines...)...)
	}
}

// WithPersonalities appends lines to PERSONALITY and OUTPUT INSTRUCTIONS
func WithPersonalities(lines ...string) Option {
	return func(g *Generator) {
		g.personalities = append(g.personalities, systemprompt.Bullets(lines...)...)
	}
}

// WithExperiments appends suggested followup questions
func WithExperiments(lines ...string) Option {
	return func(g *Generator) {
		g.experiments = append(g.experiments, systemprompt.Bullets(lines...)...)
	}
}

func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
