package pairs

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/infra/uniswap"
	"github.com/fleshka4/pair-resolver/internal/observability"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// EngineConfig holds the Engine settings.
type EngineConfig struct {
	// VerifyTokenOrder adds a token0 read for existing pairs.
	VerifyTokenOrder bool
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// Engine runs resolution passes. A pass never blocks: data not yet available
// is reported as loading and the pass is run again once the scheduler has progressed.
type Engine struct {
	resolver *Resolver
	fetcher  *ReserveFetcher
	verifier *TokenOrderVerifier
	metrics  *observability.Metrics
}

// NewEngine creates an Engine submitting its reads to scheduler.
func NewEngine(scheduler BatchScheduler, cfg EngineConfig) (*Engine, error) {
	if scheduler == nil {
		return nil, errors.New("scheduler is nil")
	}

	codec, err := uniswap.NewCodec()
	if err != nil {
		return nil, errors.Wrap(err, "uniswap.NewCodec")
	}

	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetrics(nil, "")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	e := &Engine{
		resolver: NewResolver(scheduler, codec, cfg.Logger),
		fetcher:  NewReserveFetcher(scheduler, codec, cfg.Logger),
		metrics:  cfg.Metrics,
	}
	if cfg.VerifyTokenOrder {
		e.verifier = NewTokenOrderVerifier(scheduler, codec, cfg.Metrics, cfg.Logger)
	}

	return e, nil
}

// ResolvePairs derives the state of every query, aligned 1:1 with queries.
func (e *Engine) ResolvePairs(chain Chain, queries []PairQuery) ([]Result, error) {
	e.metrics.PassesTotal.Inc()

	canonical := make([]token.Canonical, len(queries))
	for i, q := range queries {
		canonical[i] = token.Canonicalize(onChain(chain, q.TokenA), onChain(chain, q.TokenB))
	}

	addrs := e.resolver.ResolveAddresses(chain, canonical)
	reserves := e.fetcher.FetchReserves(addrs)

	results, err := DeriveAll(queries, canonical, addrs, reserves)
	if err != nil {
		return nil, errors.Wrap(err, "DeriveAll")
	}

	if e.verifier != nil {
		e.verifier.Verify(results)
	}

	return results, nil
}

// ResolveSinglePair derives the state of one pair.
func (e *Engine) ResolveSinglePair(chain Chain, tokenA, tokenB *token.Token) Result {
	results, err := e.ResolvePairs(chain, []PairQuery{{TokenA: tokenA, TokenB: tokenB}})
	if err != nil || len(results) == 0 {
		return LoadingResult()
	}
	return results[0]
}

// ResolveLiquidityTokens describes the share token of every pair. The second
// return value reports whether any address lookup is still outstanding.
func (e *Engine) ResolveLiquidityTokens(chain Chain, pairs [][2]token.Token) ([]LiquidityPairToken, bool) {
	e.metrics.PassesTotal.Inc()

	canonical := make([]token.Canonical, len(pairs))
	for i, p := range pairs {
		canonical[i] = token.Canonicalize(onChain(chain, &p[0]), onChain(chain, &p[1]))
	}

	addrs := e.resolver.ResolveAddresses(chain, canonical)

	out := make([]LiquidityPairToken, len(pairs))
	pending := false
	for i, p := range pairs {
		if addrs[i].Status == AddressUnresolved {
			pending = true
		}
		out[i] = DeriveLiquidityToken(p, canonical[i], addrs[i])
	}

	return out, pending
}

// onChain hides tokens that do not belong to chain.
func onChain(chain Chain, t *token.Token) *token.Token {
	if t == nil || t.ChainID != chain.ID {
		return nil
	}
	return t
}
