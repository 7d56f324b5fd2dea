// Package systemprompt builds system prompts out of titled sections and context providers
package systemprompt

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrContextProviderNotFound is returned when looking up an unknown context provider
var ErrContextProviderNotFound = errors.New("context provider not found")

// Generator is system prompt generator framework
type Generator interface {
	Generate() string
	// ContextProvider retrieves a context provider by name.
	// If the context provider is not found returns not found error
	ContextProvider(title string) (ContextProvider, error)
	// AddContextProviders registers new context providers
	AddContextProviders(providers ...ContextProvider)
	// RemoveContextProviders Unregisters an existing context provider.
	RemoveContextProviders(titles ...string)
}

// Section is a titled block of prompt lines
type Section struct {
	Title string
	Lines []string
}

type BaseGenerator struct {
	contextProviders []ContextProvider
}

func (g *BaseGenerator) ContextProviders() []ContextProvider {
	return g.contextProviders
}

// ContextProvider retrieves a context provider by name.
func (g *BaseGenerator) ContextProvider(title string) (ContextProvider, error) {
	for _, p := range g.contextProviders {
		if p.Title() == title {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrContextProviderNotFound, title)
}

// AddContextProviders registers new context providers, keeping the first provider of a title
func (g *BaseGenerator) AddContextProviders(providers ...ContextProvider) {
	for _, provider := range providers {
		if _, err := g.ContextProvider(provider.Title()); err != nil {
			g.contextProviders = append(g.contextProviders, provider)
		}
	}
}

// RemoveContextProviders Unregisters existing context providers.
func (g *BaseGenerator) RemoveContextProviders(titles ...string) {
	g.contextProviders = slices.DeleteFunc(g.contextProviders, func(p ContextProvider) bool {
		return slices.Contains(titles, p.Title())
	})
}

// Render joins the non empty sections followed by the extra information of the context providers
func (g *BaseGenerator) Render(sections ...Section) string {
	var parts []string
	for _, section := range sections {
		if len(section.Lines) == 0 {
			continue
		}
		parts = append(parts, "# "+section.Title)
		parts = append(parts, section.Lines...)
		parts = append(parts, "")
	}
	var extra []string
	for _, provider := range g.contextProviders {
		if info := provider.Info(); info != "" {
			extra = append(extra, "## "+provider.Title(), info, "")
		}
	}
	if len(extra) > 0 {
		parts = append(parts, "# EXTRA INFORMATION AND CONTEXT")
		parts = append(parts, extra...)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Bullets returns lines as markdown list items, blank lines are dropped
func Bullets(lines ...string) []string {
	ret := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "- ") {
			line = "- " + line
		}
		ret = append(ret, line)
	}
	return ret
}
