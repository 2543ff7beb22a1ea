package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/observability"
	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/service/dto"
	"github.com/fleshka4/pair-resolver/internal/service/validate"
	"github.com/fleshka4/pair-resolver/internal/token"
)

//go:generate mockgen -source=service.go -destination=mock/mock_service.go -package=mock

const defaultMemoSize = 1024

// Service represents interface for business logic.
type Service interface {
	ResolvePairs(ctx context.Context, req dto.ResolvePairsRequest) ([]pairs.Result, error)
	ResolveSinglePair(ctx context.Context, req dto.ResolveSinglePairRequest) (pairs.Result, error)
	ResolveLiquidityTokens(ctx context.Context, req dto.ResolveLiquidityTokensRequest) (dto.LiquidityTokensResult, error)
}

// Engine runs single non-blocking resolution passes.
type Engine interface {
	ResolvePairs(chain pairs.Chain, queries []pairs.PairQuery) ([]pairs.Result, error)
	ResolveLiquidityTokens(chain pairs.Chain, tokens [][2]token.Token) ([]pairs.LiquidityPairToken, bool)
}

// Progress reports scheduler progress.
type Progress interface {
	Generation() uint64
	Changed() <-chan struct{}
}

// Config holds the PairService settings.
type Config struct {
	// MemoSize bounds the number of memoized query sets.
	MemoSize int
	// MemoTTL is how long a settled result may be served without a new pass. Zero disables memoization.
	MemoTTL time.Duration
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

type memoEntry struct {
	generation uint64
	results    []pairs.Result
}

// PairService awaits resolution passes until they settle or the context ends.
type PairService struct {
	engine   Engine
	progress Progress
	memo     *expirable.LRU[string, memoEntry]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewPairService creates PairService.
func NewPairService(engine Engine, progress Progress, cfg Config) *PairService {
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetrics(nil, "")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MemoSize <= 0 {
		cfg.MemoSize = defaultMemoSize
	}

	s := &PairService{
		engine:   engine,
		progress: progress,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
	if cfg.MemoTTL > 0 {
		s.memo = expirable.NewLRU[string, memoEntry](cfg.MemoSize, nil, cfg.MemoTTL)
	}
	return s
}

// ResolvePairs returns the state of every query, aligned 1:1 with req.Queries.
// Positions still loading when ctx ends are returned as loading.
func (s *PairService) ResolvePairs(ctx context.Context, req dto.ResolvePairsRequest) ([]pairs.Result, error) {
	if err := validate.ResolvePairsRequestValidate(req); err != nil {
		return nil, err
	}

	key := pairs.PassKey(req.Chain, req.Queries)
	if s.memo != nil {
		if entry, ok := s.memo.Get(key); ok && entry.generation == s.progress.Generation() {
			return entry.results, nil
		}
	}

	var generation uint64
	results, settled, err := await(ctx, s.progress, func() ([]pairs.Result, bool, error) {
		generation = s.progress.Generation()
		results, err := s.engine.ResolvePairs(req.Chain, req.Queries)
		if err != nil {
			return nil, false, errors.Wrap(err, "s.engine.ResolvePairs")
		}
		return results, !pairs.AnyPending(results), nil
	})
	if err != nil {
		return nil, err
	}

	if settled && s.memo != nil {
		s.memo.Add(key, memoEntry{generation: generation, results: results})
	}
	s.observe(results, settled)

	return results, nil
}

// ResolveSinglePair returns the state of one pair.
func (s *PairService) ResolveSinglePair(ctx context.Context, req dto.ResolveSinglePairRequest) (pairs.Result, error) {
	if err := validate.ResolveSinglePairRequestValidate(req); err != nil {
		return pairs.Result{}, err
	}

	results, err := s.ResolvePairs(ctx, dto.ResolvePairsRequest{
		Chain:   req.Chain,
		Queries: []pairs.PairQuery{{TokenA: req.TokenA, TokenB: req.TokenB}},
	})
	if err != nil {
		return pairs.Result{}, err
	}
	if len(results) == 0 {
		return pairs.LoadingResult(), nil
	}
	return results[0], nil
}

// ResolveLiquidityTokens returns the share token of every pair, aligned 1:1 with req.Pairs.
func (s *PairService) ResolveLiquidityTokens(ctx context.Context, req dto.ResolveLiquidityTokensRequest) (dto.LiquidityTokensResult, error) {
	if err := validate.ResolveLiquidityTokensRequestValidate(req); err != nil {
		return dto.LiquidityTokensResult{}, err
	}

	items, settled, err := await(ctx, s.progress, func() ([]pairs.LiquidityPairToken, bool, error) {
		items, pending := s.engine.ResolveLiquidityTokens(req.Chain, req.Pairs)
		return items, !pending, nil
	})
	if err != nil {
		return dto.LiquidityTokensResult{}, err
	}

	s.logger.Debug("liquidity tokens resolved",
		zap.Uint64("chain_id", req.Chain.ID),
		zap.Int("pairs", len(req.Pairs)),
		zap.Bool("pending", !settled),
	)

	return dto.LiquidityTokensResult{Items: items, Pending: !settled}, nil
}

func (s *PairService) observe(results []pairs.Result, settled bool) {
	counts := make(map[pairs.State]int, 4)
	for _, r := range results {
		counts[r.State]++
	}
	for state, n := range counts {
		s.metrics.PairStates.WithLabelValues(state.String()).Add(float64(n))
	}

	s.logger.Debug("pairs resolved",
		zap.Int("queries", len(results)),
		zap.Int("exists", counts[pairs.StateExists]),
		zap.Int("not_exists", counts[pairs.StateNotExists]),
		zap.Int("invalid", counts[pairs.StateInvalid]),
		zap.Int("loading", counts[pairs.StateLoading]),
		zap.Bool("settled", settled),
	)
}

// await runs pass until it settles or ctx ends, re-running it on every
// scheduler change. The last value is returned either way.
func await[T any](ctx context.Context, progress Progress, pass func() (T, bool, error)) (T, bool, error) {
	for {
		changed := progress.Changed()

		value, settled, err := pass()
		if err != nil || settled {
			return value, settled, err
		}

		select {
		case <-ctx.Done():
			return value, false, nil
		case <-changed:
		}
	}
}
