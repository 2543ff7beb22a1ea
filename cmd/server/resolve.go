package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/config"
	"github.com/fleshka4/pair-resolver/internal/logging"
	servicedto "github.com/fleshka4/pair-resolver/internal/service/dto"
	"github.com/fleshka4/pair-resolver/internal/transport/http/dto"
	"github.com/fleshka4/pair-resolver/internal/transport/http/validate"
)

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return errors.Wrap(err, "config.Load")
	}

	queriesPath, _ := cmd.Flags().GetString("queries")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = cfg.RequestTimeout
	}

	body, err := readQueries(queriesPath)
	if err != nil {
		return err
	}
	queries, err := validate.PairQueries(body)
	if err != nil {
		return errors.Wrap(err, "validate.PairQueries")
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
		return err
	}
	defer a.Close()

	go a.scheduler.Run(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := a.service.ResolvePairs(waitCtx, servicedto.ResolvePairsRequest{
		Chain:   a.chain(),
		Queries: queries,
	})
	if err != nil {
		return errors.Wrap(err, "a.service.ResolvePairs")
	}
	logger.Debug("resolve finished", zap.Int("queries", len(results)))

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(dto.NewPairResults(results)), "encoder.Encode")
}

func readQueries(path string) (body dto.ResolvePairsBody, err error) {
	f, err := os.Open(path)
	if err != nil {
		return dto.ResolvePairsBody{}, errors.Wrap(err, "os.Open")
	}
	defer func() {
		err = multierr.Append(err, errors.Wrap(f.Close(), "f.Close"))
	}()

	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		return dto.ResolvePairsBody{}, errors.Wrap(err, "decoder.Decode")
	}
	return body, nil
}
