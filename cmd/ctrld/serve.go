package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctrld/internal/command"
	"github.com/fyrsmithlabs/ctrld/internal/config"
	ctrldhttp "github.com/fyrsmithlabs/ctrld/internal/http"
	"github.com/fyrsmithlabs/ctrld/internal/identity"
	"github.com/fyrsmithlabs/ctrld/internal/logging"
	"github.com/fyrsmithlabs/ctrld/internal/registry"
	ctrldslack "github.com/fyrsmithlabs/ctrld/internal/slack"
	"github.com/fyrsmithlabs/ctrld/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack bot and operational HTTP server",
	Long: `Connect to Slack over Socket Mode, handle /ctrl slash commands, and
serve health, registry, and metrics endpoints over HTTP.

Credentials come from the environment:
  SLACK_APP_TOKEN  app-level token (xapp-...)
  SLACK_BOT_TOKEN  bot token (xoxb-...)`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logging.Sync(logger) //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Manifest.Path, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open manifest store: %w", err)
	}

	reg, err := registry.New(st, logger.Named("registry"))
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}

	linker, err := identity.NewLinker(reg)
	if err != nil {
		return fmt.Errorf("failed to create identity linker: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, err := command.NewRouter(reg, linker, command.NewMetrics(promReg), logger.Named("command"))
	if err != nil {
		return fmt.Errorf("failed to create command router: %w", err)
	}

	bot, err := ctrldslack.New(&ctrldslack.Config{
		AppToken: cfg.Slack.AppToken,
		BotToken: cfg.Slack.BotToken,
	}, router, logger.Named("slack"))
	if err != nil {
		return fmt.Errorf("failed to create slack bot: %w", err)
	}

	server, err := ctrldhttp.NewServer(reg, promReg, logger.Named("http"), &ctrldhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 2)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	go func() {
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("slack bot failed: %w", err)
		}
	}()

	logger.Info("ctrld started", zap.String("manifest", st.Path()))

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("component failed", zap.Error(runErr))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}

	return runErr
}
