package main

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/config"
	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
	"github.com/fleshka4/pair-resolver/internal/observability"
	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/service"
	"github.com/fleshka4/pair-resolver/internal/storage"
	"github.com/fleshka4/pair-resolver/internal/storage/postgres"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	scheduler *multicall.Scheduler
	service   *service.PairService

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = observability.NewMetrics(reg, cfg.MetricsNamespace)

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, errors.Wrap(err, "ethclient.DialContext")
	}
	a.closers = append(a.closers, client.Close)

	var store storage.ResultStore
	if cfg.PostgresDSN != "" {
		pg, err := postgres.NewResultStore(ctx, cfg.PostgresDSN, cfg.ChainID)
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "postgres.NewResultStore")
		}
		a.closers = append(a.closers, pg.Close)

		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, errors.Wrap(err, "pg.Migrate")
		}
		store = pg
	}

	a.scheduler, err = multicall.NewScheduler(client, multicall.Config{
		Address:      cfg.Multicall(),
		BatchWindow:  cfg.BatchWindow,
		MaxBatchSize: cfg.MaxBatchSize,
		CallTimeout:  cfg.CallTimeout,
		ResultTTL:    cfg.ResultTTL,
		MaxEntries:   cfg.MaxCachedCalls,
		Store:        store,
		Metrics:      a.metrics,
		Logger:       logger.Named("multicall"),
	})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "multicall.NewScheduler")
	}

	if store != nil {
		if err := a.scheduler.Preload(ctx); err != nil {
			logger.Warn("preload stored results failed", zap.Error(err))
		}
	}

	engine, err := pairs.NewEngine(a.scheduler, pairs.EngineConfig{
		VerifyTokenOrder: cfg.VerifyTokenOrder,
		Metrics:          a.metrics,
		Logger:           logger.Named("pairs"),
	})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "pairs.NewEngine")
	}

	a.service = service.NewPairService(engine, a.scheduler, service.Config{
		MemoTTL: cfg.ResultTTL,
		Metrics: a.metrics,
		Logger:  logger.Named("service"),
	})

	return a, nil
}

// Close releases the store and RPC connections in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) chain() pairs.Chain {
	return pairs.Chain{ID: a.cfg.ChainID, Registry: a.cfg.Registry()}
}
