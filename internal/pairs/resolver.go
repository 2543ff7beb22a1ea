package pairs

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
	"github.com/fleshka4/pair-resolver/internal/infra/uniswap"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// Resolver looks up pair addresses in the chain's pair registry.
type Resolver struct {
	scheduler BatchScheduler
	codec     *uniswap.Codec
	logger    *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(scheduler BatchScheduler, codec *uniswap.Codec, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{scheduler: scheduler, codec: codec, logger: logger}
}

// ResolveAddresses returns the pair address of every entry, aligned 1:1 with pairs.
// Entries that are not valid pairs are NotFound without a lookup. Identical pairs
// share one lookup, submitted as a single batch.
func (r *Resolver) ResolveAddresses(chain Chain, pairs []token.Canonical) []AddressResult {
	out := make([]AddressResult, len(pairs))
	positions := make([]int, len(pairs))
	byKey := make(map[string]int, len(pairs))
	calls := make([]multicall.Call, 0, len(pairs))

	for i, c := range pairs {
		positions[i] = -1
		if !c.IsValid() {
			out[i] = AddressResult{Status: AddressNotFound}
			continue
		}

		key := c.Pair.Key()
		pos, ok := byKey[key]
		if !ok {
			call, err := r.codec.GetPairCall(chain.Registry, c.Pair.Token0.Address, c.Pair.Token1.Address)
			if err != nil {
				r.logger.Error("build getPair call failed", zap.String("pair", key), zap.Error(err))
				out[i] = AddressResult{Status: AddressUnresolved}
				continue
			}
			pos = len(calls)
			calls = append(calls, call)
			byKey[key] = pos
		}
		positions[i] = pos
	}

	if len(calls) == 0 {
		return out
	}

	states := r.scheduler.SubmitBatch(calls, multicall.Options{NeverReload: true})
	for i, pos := range positions {
		if pos < 0 {
			continue
		}
		out[i] = r.addressFrom(states[pos])
	}

	return out
}

func (r *Resolver) addressFrom(st multicall.CallState) AddressResult {
	switch {
	case st.Loading || st.Err != nil:
		return AddressResult{Status: AddressUnresolved}
	case len(st.Result) == 0:
		return AddressResult{Status: AddressNotFound}
	}

	addr, err := r.codec.DecodePairAddress(st.Result)
	if err != nil {
		r.logger.Debug("undecodable getPair result", zap.Error(err))
		return AddressResult{Status: AddressNotFound}
	}
	if addr == (common.Address{}) {
		return AddressResult{Status: AddressNotFound}
	}
	return AddressResult{Status: AddressFound, Address: addr}
}
