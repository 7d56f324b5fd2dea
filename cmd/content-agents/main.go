// Command content-agents serves the assistant and newsroom forms.
//
// Usage:
//
//	content-agents -addr :8501 -env .env
//
// Keys may be entered in the page sidebar or configured with AZURE_OPENAI_API_KEY,
// AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_VERSION, AZURE_OPENAI_DEPLOYMENT_NAME and BING_API_KEY.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bububa/content-agents/config"
	"github.com/bububa/content-agents/newsroom"
	"github.com/bububa/content-agents/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		addr      = flag.String("addr", "", "listen address, overrides LISTEN_ADDR")
		configDir = flag.String("config", "", "directory with agents.yaml and tasks.yaml, overrides CONTENT_AGENTS_CONFIG_DIR")
		envFile   = flag.String("env", ".env", "dotenv file read when present")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	lookup, err := config.EnvLookup(*envFile)
	if err != nil {
		log.Fatalln(err)
	}
	settings, err := config.LoadSettings(lookup)
	if err != nil {
		log.Fatalln(err)
	}
	if *addr != "" {
		settings.Addr = *addr
	}
	if *configDir != "" {
		settings.ConfigDir = *configDir
	}
	if *debug {
		settings.Debug = true
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	defs, err := loadDefinitions(settings.ConfigDir)
	if err != nil {
		logger.Error("load agent definitions", "error", err)
		os.Exit(1)
	}
	srv, err := web.New(settings, &web.ServiceRunner{Defs: defs, Logger: logger}, web.WithLogger(logger))
	if err != nil {
		logger.Error("init server", "error", err)
		os.Exit(1)
	}
	httpServer := &http.Server{
		Addr:              settings.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		logger.Info("listening", "addr", settings.Addr, "config_dir", settings.ConfigDir, "search", settings.Search.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func loadDefinitions(dir string) (*config.Config, error) {
	if dir == "" {
		return newsroom.DefaultConfig()
	}
	defs, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := newsroom.Check(defs); err != nil {
		return nil, err
	}
	return defs, nil
}
