package pairs

import (
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
	"github.com/fleshka4/pair-resolver/internal/infra/uniswap"
)

// ReserveFetcher reads reserves from pair contracts.
type ReserveFetcher struct {
	scheduler BatchScheduler
	codec     *uniswap.Codec
	logger    *zap.Logger
}

// NewReserveFetcher creates a ReserveFetcher.
func NewReserveFetcher(scheduler BatchScheduler, codec *uniswap.Codec, logger *zap.Logger) *ReserveFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReserveFetcher{scheduler: scheduler, codec: codec, logger: logger}
}

// FetchReserves returns the reserves of every address, aligned 1:1 with addrs.
// Unresolved addresses are Loading and missing ones Absent, both without a read.
func (f *ReserveFetcher) FetchReserves(addrs []AddressResult) []ReservesResult {
	out := make([]ReservesResult, len(addrs))
	positions := make([]int, len(addrs))
	byAddress := make(map[string]int, len(addrs))
	calls := make([]multicall.Call, 0, len(addrs))

	for i, a := range addrs {
		positions[i] = -1
		switch a.Status {
		case AddressUnresolved:
			out[i] = ReservesResult{Status: ReservesLoading}
			continue
		case AddressNotFound:
			out[i] = ReservesResult{Status: ReservesAbsent}
			continue
		}

		key := a.Address.Hex()
		pos, ok := byAddress[key]
		if !ok {
			call, err := f.codec.GetReservesCall(a.Address)
			if err != nil {
				f.logger.Error("build getReserves call failed", zap.String("pair", key), zap.Error(err))
				out[i] = ReservesResult{Status: ReservesLoading}
				continue
			}
			pos = len(calls)
			calls = append(calls, call)
			byAddress[key] = pos
		}
		positions[i] = pos
	}

	if len(calls) == 0 {
		return out
	}

	states := f.scheduler.SubmitBatch(calls, multicall.Options{})
	for i, pos := range positions {
		if pos < 0 {
			continue
		}
		out[i] = f.reservesFrom(states[pos])
	}

	return out
}

func (f *ReserveFetcher) reservesFrom(st multicall.CallState) ReservesResult {
	switch {
	case st.Loading || st.Err != nil:
		return ReservesResult{Status: ReservesLoading}
	case len(st.Result) == 0:
		return ReservesResult{Status: ReservesAbsent}
	}

	reserve0, reserve1, err := f.codec.DecodeReserves(st.Result)
	if err != nil {
		f.logger.Debug("undecodable getReserves result", zap.Error(err))
		return ReservesResult{Status: ReservesAbsent}
	}
	return ReservesResult{
		Status: ReservesPresent,
		Raw:    RawReserves{Reserve0: reserve0, Reserve1: reserve1},
	}
}
