package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/bububa/content-agents/assistant"
	"github.com/bububa/content-agents/config"
	"github.com/bububa/content-agents/connectors"
	"github.com/bububa/content-agents/newsroom"
)

// ServiceRunner builds fresh clients from the settings of every run
type ServiceRunner struct {
	// Defs are the newsroom agent and task definitions
	Defs       *config.Config
	HTTPClient *http.Client
	Logger     *slog.Logger
}

var _ Runner = (*ServiceRunner)(nil)

func (r *ServiceRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *ServiceRunner) build(ctx context.Context, settings config.Settings, opts ...connectors.Option) (*connectors.Set, error) {
	if r.HTTPClient != nil {
		opts = append(opts, connectors.WithHttpClient(r.HTTPClient))
	}
	return connectors.Build(ctx, settings, opts...)
}

// Ask runs the assistant flow
func (r *ServiceRunner) Ask(ctx context.Context, settings config.Settings, subject string) (string, error) {
	set, err := r.build(ctx, settings)
	if err != nil {
		return "", err
	}
	a, err := assistant.New(set.Chat, set.Model, set.Search, assistant.WithLogger(r.logger()))
	if err != nil {
		return "", err
	}
	res, err := a.Ask(ctx, subject)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// Content runs the newsroom flow
func (r *ServiceRunner) Content(ctx context.Context, settings config.Settings, subject string) (*newsroom.Result, error) {
	set, err := r.build(ctx, settings, connectors.WithStructured())
	if err != nil {
		return nil, err
	}
	if closer, ok := set.Structured.(io.Closer); ok {
		defer closer.Close()
	}
	n, err := newsroom.New(r.Defs, newsroom.NewDeps(set, r.logger()))
	if err != nil {
		return nil, err
	}
	return n.Run(ctx, subject)
}
