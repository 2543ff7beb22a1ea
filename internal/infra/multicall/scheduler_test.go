package multicall

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall/mock"
	"github.com/fleshka4/pair-resolver/internal/storage"
	"github.com/fleshka4/pair-resolver/internal/storage/memory"
)

var testTarget = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")

type callFunc = func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error)

// responder decodes aggregate3 input and answers each sub-call with respond.
func responder(t *testing.T, subCalls *atomic.Int64, respond func(c call3) result3) callFunc {
	t.Helper()

	parsed, err := ParsedABI()
	require.NoError(t, err)
	method := parsed.Methods[AggregateMethod]

	return func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		calls := *abi.ConvertType(args[0], new([]call3)).(*[]call3)

		results := make([]result3, len(calls))
		for i, c := range calls {
			if subCalls != nil {
				subCalls.Add(1)
			}
			results[i] = respond(c)
		}
		return method.Outputs.Pack(results)
	}
}

func echo(c call3) result3 {
	return result3{Success: true, ReturnData: append([]byte{0xff}, c.CallData...)}
}

func newTestScheduler(t *testing.T, caller EthCaller, cfg Config) *Scheduler {
	t.Helper()

	s, err := NewScheduler(caller, cfg)
	require.NoError(t, err)
	return s
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	t.Run("nil caller", func(t *testing.T) {
		t.Parallel()

		s, err := NewScheduler(nil, Config{})
		require.Error(t, err)
		require.Nil(t, s)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		s := newTestScheduler(t, mock.NewMockEthCaller(ctrl), Config{BatchWindow: -1})

		require.Equal(t, DefaultAddress, s.address)
		require.Equal(t, defaultBatchWindow, s.window)
		require.Equal(t, defaultMaxBatchSize, s.maxBatch)
		require.Equal(t, defaultCallTimeout, s.callTimeout)
		require.Zero(t, s.Generation())
	})
}

func TestScheduler_SubmitAndFlush(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{})

	call := Call{Target: testTarget, Data: []byte{0x01, 0x02}}

	states := s.SubmitBatch([]Call{call}, Options{})
	require.Equal(t, []CallState{{Loading: true}}, states)

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
			require.Equal(t, DefaultAddress, *msg.To)
			return responder(t, nil, echo)(ctx, msg, block)
		})

	changed := s.Changed()
	require.NoError(t, s.Flush(context.Background()))

	select {
	case <-changed:
	default:
		t.Fatal("changed channel was not closed")
	}
	require.EqualValues(t, 1, s.Generation())

	states = s.SubmitBatch([]Call{call}, Options{})
	require.Len(t, states, 1)
	require.False(t, states[0].Loading)
	require.NoError(t, states[0].Err)
	require.Equal(t, []byte{0xff, 0x01, 0x02}, states[0].Result)

	// Nothing queued: no further dispatch.
	require.NoError(t, s.Flush(context.Background()))
}

func TestScheduler_Coalescing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{})

	a := Call{Target: testTarget, Data: []byte{0x0a}}
	b := Call{Target: testTarget, Data: []byte{0x0b}}

	states := s.SubmitBatch([]Call{a, a, b}, Options{})
	require.Equal(t, []CallState{{Loading: true}, {Loading: true}, {Loading: true}}, states)
	s.SubmitBatch([]Call{b}, Options{NeverReload: true})

	var subCalls atomic.Int64
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, &subCalls, echo)).
		Times(1)

	require.NoError(t, s.Flush(context.Background()))
	require.EqualValues(t, 2, subCalls.Load())
	require.InDelta(t, 2, testutil.ToFloat64(s.metrics.CallsCoalesced), 0)
}

func TestScheduler_Chunking(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{MaxBatchSize: 2})

	calls := make([]Call, 5)
	for i := range calls {
		calls[i] = Call{Target: testTarget, Data: []byte{byte(i)}}
	}
	s.SubmitBatch(calls, Options{})

	var subCalls atomic.Int64
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, &subCalls, echo)).
		Times(3)

	require.NoError(t, s.Flush(context.Background()))
	require.EqualValues(t, 5, subCalls.Load())
	require.InDelta(t, 3, testutil.ToFloat64(s.metrics.BatchesDispatched), 0)

	states := s.SubmitBatch(calls, Options{})
	for i, st := range states {
		require.Equal(t, []byte{0xff, byte(i)}, st.Result)
	}
}

func TestScheduler_RevertedSubCall(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{})

	call := Call{Target: testTarget, Data: []byte{0x01}}
	s.SubmitBatch([]Call{call}, Options{})

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, nil, func(call3) result3 {
			return result3{Success: false, ReturnData: []byte{0x08, 0xc3, 0x79, 0xa0}}
		}))

	require.NoError(t, s.Flush(context.Background()))

	states := s.SubmitBatch([]Call{call}, Options{})
	require.True(t, states[0].Empty())
}

func TestScheduler_TransportError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{MaxBatchSize: 1})

	a := Call{Target: testTarget, Data: []byte{0x01}}
	b := Call{Target: testTarget, Data: []byte{0x02}}
	s.SubmitBatch([]Call{a, b}, Options{})

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return(nil, errors.New("connection refused")).
		Times(2)

	err := s.Flush(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
	require.InDelta(t, 2, testutil.ToFloat64(s.metrics.DispatchErrors), 0)

	// The failure is reported once, then the call is queued again.
	states := s.SubmitBatch([]Call{a, a}, Options{})
	require.Error(t, states[0].Err)
	require.Equal(t, states[0], states[1])

	states = s.SubmitBatch([]Call{a}, Options{})
	require.Equal(t, []CallState{{Loading: true}}, states)

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, nil, echo))

	require.NoError(t, s.Flush(context.Background()))

	states = s.SubmitBatch([]Call{a}, Options{})
	require.Equal(t, []byte{0xff, 0x01}, states[0].Result)
}

func TestScheduler_MalformedResponse(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{})

	call := Call{Target: testTarget, Data: []byte{0x01}}
	s.SubmitBatch([]Call{call}, Options{})

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		Return([]byte("invalid data"), nil)

	require.Error(t, s.Flush(context.Background()))

	states := s.SubmitBatch([]Call{call}, Options{})
	require.Error(t, states[0].Err)
}

func TestScheduler_ResultTTL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{ResultTTL: time.Minute})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	fixed := Call{Target: testTarget, Data: []byte{0x01}}
	live := Call{Target: testTarget, Data: []byte{0x02}}
	missing := Call{Target: testTarget, Data: []byte{0x03}}

	respond := func(c call3) result3 {
		if c.CallData[0] == 0x03 {
			return result3{Success: true}
		}
		return echo(c)
	}

	s.SubmitBatch([]Call{fixed, missing}, Options{NeverReload: true})
	s.SubmitBatch([]Call{live}, Options{})

	var subCalls atomic.Int64
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, &subCalls, respond)).
		Times(2)

	require.NoError(t, s.Flush(context.Background()))
	require.EqualValues(t, 3, subCalls.Load())

	clock = clock.Add(2 * time.Minute)

	// Stale results keep being served while they refresh.
	states := s.SubmitBatch([]Call{fixed, live, missing}, Options{})
	require.Equal(t, []byte{0xff, 0x01}, states[0].Result)
	require.Equal(t, []byte{0xff, 0x02}, states[1].Result)
	require.True(t, states[2].Empty())

	states = s.SubmitBatch([]Call{live}, Options{})
	require.Equal(t, []byte{0xff, 0x02}, states[0].Result)

	require.NoError(t, s.Flush(context.Background()))
	// Only live and missing were fetched again.
	require.EqualValues(t, 5, subCalls.Load())
}

func TestScheduler_FailedRefreshKeepsResult(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{ResultTTL: time.Second})

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	call := Call{Target: testTarget, Data: []byte{0x01}}
	s.SubmitBatch([]Call{call}, Options{})

	gomock.InOrder(
		caller.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(responder(t, nil, echo)),
		caller.EXPECT().
			CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(nil, errors.New("timeout")),
	)

	require.NoError(t, s.Flush(context.Background()))

	clock = clock.Add(time.Minute)
	s.SubmitBatch([]Call{call}, Options{})
	require.Error(t, s.Flush(context.Background()))

	states := s.SubmitBatch([]Call{call}, Options{})
	require.NoError(t, states[0].Err)
	require.Equal(t, []byte{0xff, 0x01}, states[0].Result)
}

func TestScheduler_Store(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	known := Call{Target: testTarget, Data: []byte{0x01}}

	store := memory.NewResultStore()
	require.NoError(t, store.SaveResults(ctx, []storage.CallResult{{
		Target:     known.Target,
		CallData:   known.Data,
		ReturnData: []byte{0xaa},
	}}))

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{Store: store})

	require.NoError(t, s.Preload(ctx))

	// Preloaded results are served without dispatch.
	states := s.SubmitBatch([]Call{known}, Options{NeverReload: true})
	require.Equal(t, []byte{0xaa}, states[0].Result)
	require.NoError(t, s.Flush(ctx))

	fixed := Call{Target: testTarget, Data: []byte{0x02}}
	live := Call{Target: testTarget, Data: []byte{0x03}}
	missing := Call{Target: testTarget, Data: []byte{0x04}}

	s.SubmitBatch([]Call{fixed, missing}, Options{NeverReload: true})
	s.SubmitBatch([]Call{live}, Options{})

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, nil, func(c call3) result3 {
			if c.CallData[0] == 0x04 {
				return result3{Success: false}
			}
			return echo(c)
		}))

	require.NoError(t, s.Flush(ctx))

	loaded, err := store.LoadResults(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, fixed.Data, loaded[1].CallData)
	require.Equal(t, []byte{0xff, 0x02}, loaded[1].ReturnData)
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{BatchWindow: time.Millisecond})

	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, nil, echo)).
		AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	call := Call{Target: testTarget, Data: []byte{0x07}}
	changed := s.Changed()
	states := s.SubmitBatch([]Call{call}, Options{})
	require.True(t, states[0].Loading)

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not dispatch the queued call")
	}

	states = s.SubmitBatch([]Call{call}, Options{})
	require.Equal(t, []byte{0xff, 0x07}, states[0].Result)
}

func TestScheduler_MaxEntries(t *testing.T) {
	t.Parallel()

	const (
		maxEntries = 10
		submitted  = 50
	)

	ctrl := gomock.NewController(t)
	caller := mock.NewMockEthCaller(ctrl)
	s := newTestScheduler(t, caller, Config{MaxEntries: maxEntries})

	var subCalls atomic.Int64
	caller.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(responder(t, &subCalls, echo)).
		AnyTimes()

	calls := make([]Call, submitted)
	for i := range calls {
		calls[i] = Call{Target: testTarget, Data: []byte{byte(i)}}
		s.SubmitBatch([]Call{calls[i]}, Options{})
	}
	require.NoError(t, s.Flush(context.Background()))

	require.Equal(t, maxEntries, s.entries.Len())
	require.InDelta(t, submitted-maxEntries, testutil.ToFloat64(s.metrics.CallsEvicted), 0)
	// evicted calls are not dispatched
	require.EqualValues(t, maxEntries, subCalls.Load())

	states := s.SubmitBatch([]Call{calls[submitted-1]}, Options{})
	require.Equal(t, []byte{0xff, byte(submitted - 1)}, states[0].Result)

	states = s.SubmitBatch([]Call{calls[0]}, Options{})
	require.True(t, states[0].Loading)
	require.Equal(t, maxEntries, s.entries.Len())

	require.NoError(t, s.Flush(context.Background()))
	states = s.SubmitBatch([]Call{calls[0]}, Options{})
	require.Equal(t, []byte{0xff, 0x00}, states[0].Result)
}

func TestCall_Key(t *testing.T) {
	t.Parallel()

	a := Call{Target: testTarget, Data: []byte{0x01}}
	b := Call{Target: testTarget, Data: []byte{0x01}}
	c := Call{Target: common.HexToAddress("0x02"), Data: []byte{0x01}}

	require.Equal(t, a.Key(), b.Key())
	require.NotEqual(t, a.Key(), c.Key())
}
