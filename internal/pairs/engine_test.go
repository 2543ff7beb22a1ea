package pairs

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
	"github.com/fleshka4/pair-resolver/internal/infra/multicall/multicalltest"
	"github.com/fleshka4/pair-resolver/internal/infra/uniswap"
	"github.com/fleshka4/pair-resolver/internal/observability"
	"github.com/fleshka4/pair-resolver/internal/token"
)

type fakePair struct {
	address  common.Address
	token0   common.Address
	reserves *[2]int64
}

type testEnv struct {
	t         *testing.T
	codec     *uniswap.Codec
	backend   *multicalltest.Backend
	scheduler *multicall.Scheduler
	engine    *Engine
	metrics   *observability.Metrics
}

// newTestEnv wires an Engine to a real scheduler backed by an in-memory chain
// holding the given pairs. A pair with nil reserves answers getReserves with no data.
func newTestEnv(t *testing.T, verify bool, pairs ...fakePair) *testEnv {
	t.Helper()

	codec := newTestCodec(t)
	backend := multicalltest.NewBackend()
	metrics := observability.NewMetrics(nil, "")

	byTokens := make(map[[2]common.Address]common.Address)
	for _, p := range pairs {
		tokens := [2]common.Address{tk0.Address, tk1.Address}
		if p.address == otherPair {
			tokens = [2]common.Address{tk0.Address, tk2.Address}
		}
		byTokens[tokens] = p.address

		getReserves, err := codec.GetReservesCall(p.address)
		require.NoError(t, err)

		backend.Handle(p.address, func(data []byte) ([]byte, bool) {
			if string(data) == string(getReserves.Data) {
				if p.reserves == nil {
					return nil, true
				}
				out, err := codec.EncodeReserves(big.NewInt(p.reserves[0]), big.NewInt(p.reserves[1]), 1700000000)
				return out, err == nil
			}
			out, err := codec.EncodeToken0(p.token0)
			return out, err == nil
		})
	}

	backend.Handle(testRegistry, func(data []byte) ([]byte, bool) {
		a, b, err := codec.DecodeGetPairArgs(data)
		if err != nil {
			return nil, false
		}
		pair := byTokens[[2]common.Address{a, b}]
		if pair == (common.Address{}) {
			pair = byTokens[[2]common.Address{b, a}]
		}
		out, err := codec.EncodePairAddress(pair)
		return out, err == nil
	})

	scheduler, err := multicall.NewScheduler(backend, multicall.Config{Metrics: metrics})
	require.NoError(t, err)

	engine, err := NewEngine(scheduler, EngineConfig{VerifyTokenOrder: verify, Metrics: metrics})
	require.NoError(t, err)

	return &testEnv{
		t:         t,
		codec:     codec,
		backend:   backend,
		scheduler: scheduler,
		engine:    engine,
		metrics:   metrics,
	}
}

// settle runs passes and flushes until nothing is pending.
func (e *testEnv) settle(queries []PairQuery) []Result {
	e.t.Helper()

	for i := 0; i < 5; i++ {
		results, err := e.engine.ResolvePairs(testChain, queries)
		require.NoError(e.t, err)
		if !AnyPending(results) {
			return results
		}
		require.NoError(e.t, e.scheduler.Flush(context.Background()))
	}
	e.t.Fatal("results did not settle")
	return nil
}

func (e *testEnv) subCallsTo(target common.Address) int {
	n := 0
	for _, c := range e.backend.SubCalls() {
		if c.Target == target {
			n++
		}
	}
	return n
}

func defaultPair() fakePair {
	return fakePair{address: testPair, token0: tk0.Address, reserves: &[2]int64{1000, 2000}}
}

func TestEngine_ScenarioA(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, defaultPair())
	queries := []PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}}

	// Address lookup in flight.
	results, err := env.engine.ResolvePairs(testChain, queries)
	require.NoError(t, err)
	require.Equal(t, StateLoading, results[0].State)
	require.NoError(t, env.scheduler.Flush(context.Background()))

	// Reserves read in flight.
	results, err = env.engine.ResolvePairs(testChain, queries)
	require.NoError(t, err)
	require.Equal(t, StateLoading, results[0].State)
	require.NoError(t, env.scheduler.Flush(context.Background()))

	results, err = env.engine.ResolvePairs(testChain, queries)
	require.NoError(t, err)
	require.Equal(t, StateExists, results[0].State)

	snapshot := results[0].Snapshot
	require.Equal(t, testPair, snapshot.PairAddress)
	require.True(t, snapshot.Token0Amount.Token.Equals(tk0))
	require.Equal(t, 0, big.NewInt(1000).Cmp(snapshot.Token0Amount.Raw))
	require.True(t, snapshot.Token1Amount.Token.Equals(tk1))
	require.Equal(t, 0, big.NewInt(2000).Cmp(snapshot.Token1Amount.Raw))
}

func TestEngine_ScenarioB(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, defaultPair())

	forward := env.settle([]PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}})
	reversed := env.settle([]PairQuery{{TokenA: ptr(tk1), TokenB: ptr(tk0)}})

	require.Equal(t, forward, reversed)
	require.Equal(t, 1, env.subCallsTo(testRegistry))
}

func TestEngine_InvalidQueriesIssueNoCalls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query PairQuery
	}{
		{name: "token a absent", query: PairQuery{TokenB: ptr(tk1)}},
		{name: "token b absent", query: PairQuery{TokenA: ptr(tk0)}},
		{name: "identical tokens", query: PairQuery{TokenA: ptr(tk0), TokenB: ptr(tk0)}},
		{name: "identical with different metadata", query: PairQuery{
			TokenA: ptr(tk0),
			TokenB: ptr(token.New(testChainID, tk0.Address, 6, "OTHER", "Other")),
		}},
		{name: "foreign chain", query: PairQuery{
			TokenA: ptr(tk0),
			TokenB: ptr(token.New(5, tk1.Address, 6, "TK1", "Token 1")),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, false, defaultPair())

			results, err := env.engine.ResolvePairs(testChain, []PairQuery{tt.query})
			require.NoError(t, err)
			require.Equal(t, []Result{InvalidResult()}, results)

			require.NoError(t, env.scheduler.Flush(context.Background()))
			require.Zero(t, env.backend.Batches())
		})
	}
}

func TestEngine_ScenarioE(t *testing.T) {
	t.Parallel()

	// The registry knows no pairs.
	env := newTestEnv(t, false)

	results := env.settle([]PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}})
	require.Equal(t, []Result{NotExistsResult()}, results)

	require.Len(t, env.backend.SubCalls(), 1)
	require.Equal(t, 1, env.subCallsTo(testRegistry))
}

func TestEngine_ScenarioF(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, fakePair{address: testPair, token0: tk0.Address})

	results := env.settle([]PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}})
	require.Equal(t, []Result{NotExistsResult()}, results)
	require.Equal(t, 1, env.subCallsTo(testPair))
}

func TestEngine_Deduplication(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, defaultPair())

	queries := make([]PairQuery, 0, 10)
	for i := 0; i < 10; i++ {
		q := PairQuery{Index: i, TokenA: ptr(tk0), TokenB: ptr(tk1)}
		if i%2 == 1 {
			q.TokenA, q.TokenB = q.TokenB, q.TokenA
		}
		queries = append(queries, q)
	}

	results := env.settle(queries)
	require.Len(t, results, 10)
	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.Equal(t, StateExists, r.State)
	}

	require.Equal(t, 1, env.subCallsTo(testRegistry))
	require.Equal(t, 1, env.subCallsTo(testPair))
}

func TestEngine_OrderPreservation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false,
		defaultPair(),
		fakePair{address: otherPair, token0: tk0.Address, reserves: &[2]int64{5, 7}},
	)

	queries := []PairQuery{
		{Index: 0, TokenA: ptr(tk2), TokenB: ptr(tk0)},
		{Index: 1, TokenA: nil, TokenB: ptr(tk0)},
		{Index: 2, TokenA: ptr(tk1), TokenB: ptr(tk0)},
		{Index: 3, TokenA: ptr(tk1), TokenB: ptr(tk2)},
		{Index: 4, TokenA: ptr(tk2), TokenB: ptr(tk0)},
		{Index: 5, TokenA: ptr(tk1), TokenB: ptr(tk1)},
	}

	results := env.settle(queries)
	require.Len(t, results, len(queries))

	states := make([]State, len(results))
	for i, r := range results {
		require.Equal(t, i, r.Index)
		states[i] = r.State
	}
	require.Equal(t, []State{StateExists, StateInvalid, StateExists, StateNotExists, StateExists, StateInvalid}, states)

	require.Equal(t, otherPair, results[0].Snapshot.PairAddress)
	require.Equal(t, 0, big.NewInt(5).Cmp(results[0].Snapshot.Token0Amount.Raw))
	require.True(t, results[0].Snapshot.Token1Amount.Token.Equals(tk2))
	require.Equal(t, testPair, results[2].Snapshot.PairAddress)
	require.Equal(t, results[0], Result{Index: 0, State: results[4].State, Snapshot: results[4].Snapshot})
}

func TestEngine_TransportError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, defaultPair())
	queries := []PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}}

	env.backend.FailWith(errors.New("node unavailable"))

	results, err := env.engine.ResolvePairs(testChain, queries)
	require.NoError(t, err)
	require.Equal(t, StateLoading, results[0].State)
	require.Error(t, env.scheduler.Flush(context.Background()))

	// The failed lookup stays pending for this pass.
	results, err = env.engine.ResolvePairs(testChain, queries)
	require.NoError(t, err)
	require.Equal(t, StateLoading, results[0].State)

	env.backend.FailWith(nil)

	results = env.settle(queries)
	require.Equal(t, StateExists, results[0].State)
}

func TestEngine_ResolveSinglePair(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, defaultPair())

	got := env.engine.ResolveSinglePair(testChain, ptr(tk1), ptr(tk0))
	require.Equal(t, StateLoading, got.State)

	env.settle([]PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}})

	got = env.engine.ResolveSinglePair(testChain, ptr(tk1), ptr(tk0))
	require.Equal(t, StateExists, got.State)
	require.Equal(t, testPair, got.Snapshot.PairAddress)

	got = env.engine.ResolveSinglePair(testChain, nil, ptr(tk0))
	require.Equal(t, StateInvalid, got.State)
}

func TestEngine_ResolveLiquidityTokens(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false, defaultPair())
	pairs := [][2]token.Token{{tk1, tk0}, {tk1, tk2}, {tk0, tk0}}

	items, pending := env.engine.ResolveLiquidityTokens(testChain, pairs)
	require.True(t, pending)
	require.Len(t, items, 3)
	for _, item := range items {
		require.Nil(t, item.LiquidityToken)
	}

	require.NoError(t, env.scheduler.Flush(context.Background()))

	items, pending = env.engine.ResolveLiquidityTokens(testChain, pairs)
	require.False(t, pending)
	require.NotNil(t, items[0].LiquidityToken)
	require.Equal(t, testPair, items[0].LiquidityToken.Address)
	require.Equal(t, uint8(18), items[0].LiquidityToken.Decimals)
	require.Equal(t, "MGP", items[0].LiquidityToken.Symbol)
	require.Equal(t, [2]token.Token{tk1, tk0}, items[0].Tokens)
	require.Nil(t, items[1].LiquidityToken)
	require.Nil(t, items[2].LiquidityToken)

	// Only the lookup batch is needed for share tokens.
	require.Zero(t, env.subCallsTo(testPair))
}

func TestEngine_VerifyTokenOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true, fakePair{address: testPair, token0: tk1.Address, reserves: &[2]int64{1000, 2000}})
	queries := []PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}}

	results := env.settle(queries)
	require.NoError(t, env.scheduler.Flush(context.Background()))

	for i := 0; i < 3; i++ {
		results = env.settle(queries)
	}

	// Reserves keep their positional assignment.
	require.Equal(t, StateExists, results[0].State)
	require.True(t, results[0].Snapshot.Token0Amount.Token.Equals(tk0))
	require.Equal(t, 0, big.NewInt(1000).Cmp(results[0].Snapshot.Token0Amount.Raw))

	require.InDelta(t, 1, testutil.ToFloat64(env.metrics.TokenOrderMismatch), 0)
}

func TestEngine_VerifyTokenOrderMatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true, defaultPair())
	queries := []PairQuery{{TokenA: ptr(tk0), TokenB: ptr(tk1)}}

	env.settle(queries)
	require.NoError(t, env.scheduler.Flush(context.Background()))
	env.settle(queries)

	require.Zero(t, testutil.ToFloat64(env.metrics.TokenOrderMismatch))
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, EngineConfig{})
	require.Error(t, err)
	require.Nil(t, engine)
}
