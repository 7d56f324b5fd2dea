package tools

import "context"

// Config holds the name, description and hooks shared by every tool
type Config struct {
	// title is the function name the model calls the tool by
	title string
	// description tells the model when to call the tool
	description string
	startHook   func(context.Context, Tool, any)
	endHook     func(context.Context, Tool, any, any)
	errorHook   func(context.Context, Tool, any, error)
}

func (c Config) Title() string {
	return c.title
}

func (c Config) Description() string {
	return c.description
}

// Option configures a tool, later options win
type Option func(c *Config)

func WithTitle(title string) Option {
	return func(c *Config) {
		c.title = title
	}
}

func WithDescription(desc string) Option {
	return func(c *Config) {
		c.description = desc
	}
}

// WithStartHook sets a function called with the decoded input before each run
func WithStartHook(fn func(context.Context, Tool, any)) Option {
	return func(c *Config) {
		c.startHook = fn
	}
}

// WithEndHook sets a function called with the input and output of each successful run
func WithEndHook(fn func(context.Context, Tool, any, any)) Option {
	return func(c *Config) {
		c.endHook = fn
	}
}

// WithErrorHook sets a function called with the input and error of each failed run
func WithErrorHook(fn func(context.Context, Tool, any, error)) Option {
	return func(c *Config) {
		c.errorHook = fn
	}
}
