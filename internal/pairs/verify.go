package pairs

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
	"github.com/fleshka4/pair-resolver/internal/infra/uniswap"
	"github.com/fleshka4/pair-resolver/internal/observability"
)

// TokenOrderVerifier compares the token0 of existing pairs with the locally sorted token0.
// A mismatch is logged and counted once per pair; results are left unchanged.
type TokenOrderVerifier struct {
	scheduler BatchScheduler
	codec     *uniswap.Codec
	metrics   *observability.Metrics
	logger    *zap.Logger

	reported sync.Map
}

// NewTokenOrderVerifier creates a TokenOrderVerifier.
func NewTokenOrderVerifier(
	scheduler BatchScheduler,
	codec *uniswap.Codec,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TokenOrderVerifier {
	return &TokenOrderVerifier{
		scheduler: scheduler,
		codec:     codec,
		metrics:   metrics,
		logger:    logger,
	}
}

// Verify submits token0 reads for the existing pairs in results and checks
// the ones already known.
func (v *TokenOrderVerifier) Verify(results []Result) {
	var (
		calls     []multicall.Call
		expected  []common.Address
		addresses []common.Address
	)
	seen := make(map[common.Address]struct{})

	for _, r := range results {
		if r.State != StateExists {
			continue
		}
		pair := r.Snapshot.PairAddress
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}

		call, err := v.codec.Token0Call(pair)
		if err != nil {
			v.logger.Error("build token0 call failed", zap.Stringer("pair", pair), zap.Error(err))
			continue
		}
		calls = append(calls, call)
		expected = append(expected, r.Snapshot.Token0Amount.Token.Address)
		addresses = append(addresses, pair)
	}

	if len(calls) == 0 {
		return
	}

	states := v.scheduler.SubmitBatch(calls, multicall.Options{NeverReload: true})
	for i, st := range states {
		if st.Loading || st.Err != nil || len(st.Result) == 0 {
			continue
		}

		token0, err := v.codec.DecodeToken0(st.Result)
		if err != nil || token0 == expected[i] {
			continue
		}

		if _, loaded := v.reported.LoadOrStore(addresses[i], struct{}{}); loaded {
			continue
		}
		v.metrics.TokenOrderMismatch.Inc()
		v.logger.Warn("pair token0 differs from sorted token0",
			zap.Stringer("pair", addresses[i]),
			zap.Stringer("chain_token0", token0),
			zap.Stringer("sorted_token0", expected[i]),
		)
	}
}
