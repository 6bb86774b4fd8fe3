package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	apphttp "github.com/spounge-ai/brainstormity/internal/app/http"
	infra_config "github.com/spounge-ai/brainstormity/internal/infra/config"
	"github.com/spounge-ai/brainstormity/internal/wiring"
	"github.com/spounge-ai/brainstormity/pkg/patterns/lifecycle"
)

func main() {
	configPath := flag.StringP("config", "c", os.Getenv("BRAINSTORM_CONFIG_PATH"), "Path to a YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: brainstormity-server [options]

Description:
  Serve the authenticated brainstorm gateway over HTTP.

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  BRAINSTORM_CONFIG_PATH   Config file used when --config is not given
  HUGGINGFACE_API_KEY      Provider credential (brainstorm endpoints return 503 without it)
  ADMIN_API_KEY            Admin credential for key issuance (required)
  PORT                     Listen port (default 8000)

`)
	}
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := infra_config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Log).With("service_version", cfg.ServiceVersion, "build_commit", cfg.BuildCommit)
	slog.SetDefault(logger)

	tlsConfig, err := wiring.ConfigureTLS(cfg.Server.TLS)
	if err != nil {
		logger.Error("failed to configure TLS", "error", err)
		os.Exit(1)
	}

	container, err := wiring.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	srv, port, err := apphttp.New(cfg.Server, container.Handler, tlsConfig, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// the server blocks in Start, so it goes last
	resources := append(container.Resources, lifecycle.ManagedResource(srv))

	go func() {
		logger.Info("starting application resources")
		for _, r := range resources[:len(resources)-1] {
			if err := r.Start(ctx); err != nil {
				logger.Error("error starting resource", "error", err)
				cancel()
				return
			}
		}
		report, ready := lifecycle.Report(ctx, resources[:len(resources)-1])
		for _, h := range report {
			logger.Info("resource health", "resource", h.Name, "ready", h.Ready, "message", h.Message)
		}
		if !ready {
			logger.Warn("some resources are not ready; serving anyway")
		}
		logger.Info("application started successfully", "port", port, "registry_backend", cfg.Registry.Backend)
		if err := srv.Start(ctx); err != nil {
			logger.Error("server stopped with error", "error", err)
			cancel()
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-signalChan:
		logger.Info("received shutdown signal", "signal", s.String())
	case <-ctx.Done():
		logger.Info("context cancelled, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	logger.Info("shutting down application resources")
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].Stop(shutdownCtx); err != nil {
			logger.Error("error stopping resource", "error", err)
		}
	}
	logger.Info("shutdown complete")
}
