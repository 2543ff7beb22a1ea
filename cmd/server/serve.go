package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/config"
	"github.com/fleshka4/pair-resolver/internal/logging"
	transport "github.com/fleshka4/pair-resolver/internal/transport/http"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return errors.Wrap(err, "config.Load")
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	go a.scheduler.Run(ctx)

	srv := transport.NewServer(a.service, cfg, a.metrics, logger.Named("http"))
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return errors.Wrap(err, "srv.ListenAndServe")
	}
	return nil
}
