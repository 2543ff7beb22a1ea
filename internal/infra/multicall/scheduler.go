package multicall

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/observability"
	"github.com/fleshka4/pair-resolver/internal/storage"
)

const (
	defaultBatchWindow  = 10 * time.Millisecond
	defaultMaxBatchSize = 100
	defaultCallTimeout  = 5 * time.Second
	defaultMaxEntries   = 1 << 16
)

//go:generate mockgen -source=scheduler.go -destination=mock/mock_eth_caller.go -package=mock

// EthCaller represents interface for calling contracts.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Call is a single contract read: Data is sent to Target.
type Call struct {
	Target common.Address
	Data   []byte
}

// Key identifies identical calls.
func (c Call) Key() string {
	return c.Target.Hex() + ":" + hex.EncodeToString(c.Data)
}

// Options tune how the results of submitted calls are kept.
type Options struct {
	// NeverReload keeps a non-empty result forever once it is known.
	NeverReload bool
}

// CallState is the current view of one submitted call.
// Result must not be modified by the receiver.
type CallState struct {
	Result  []byte
	Loading bool
	Err     error
}

// Empty reports whether the call settled without return data.
func (s CallState) Empty() bool {
	return !s.Loading && s.Err == nil && len(s.Result) == 0
}

// Config holds the scheduler settings.
type Config struct {
	Address common.Address
	// BatchWindow is how long Run waits after a wake-up before dispatching. Negative selects the default.
	BatchWindow  time.Duration
	MaxBatchSize int
	CallTimeout  time.Duration
	// ResultTTL is the age after which a result is fetched again. Zero keeps results forever.
	ResultTTL time.Duration
	// MaxEntries bounds the number of distinct calls kept. The least recently
	// submitted ones are dropped first.
	MaxEntries int
	Store      storage.ResultStore
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

type entryStatus uint8

const (
	statusPending entryStatus = iota
	statusInFlight
	statusDone
	statusFailed
)

type entry struct {
	call        Call
	status      entryStatus
	hasResult   bool
	result      []byte
	err         error
	fetchedAt   time.Time
	neverReload bool
	queued      bool
	persisted   bool
}

// Scheduler coalesces contract reads into Multicall3 aggregate3 calls.
// SubmitBatch never blocks on the network: results arrive on later passes.
type Scheduler struct {
	caller  EthCaller
	abi     abi.ABI
	address common.Address

	window      time.Duration
	maxBatch    int
	callTimeout time.Duration
	ttl         time.Duration

	store   storage.ResultStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries *lru.Cache[string, *entry]
	queue   []string
	changed chan struct{}

	generation atomic.Uint64
	wake       chan struct{}
}

// NewScheduler creates a Scheduler sending aggregate calls through caller.
func NewScheduler(caller EthCaller, cfg Config) (*Scheduler, error) {
	if caller == nil {
		return nil, errors.New("caller is nil")
	}

	parsed, err := ParsedABI()
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}

	if cfg.Address == (common.Address{}) {
		cfg.Address = DefaultAddress
	}
	if cfg.BatchWindow < 0 {
		cfg.BatchWindow = defaultBatchWindow
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetrics(nil, "")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	metrics := cfg.Metrics
	entries, err := lru.NewWithEvict(cfg.MaxEntries, func(string, *entry) {
		metrics.CallsEvicted.Inc()
	})
	if err != nil {
		return nil, errors.Wrap(err, "lru.NewWithEvict")
	}

	return &Scheduler{
		caller:  caller,
		abi:     parsed,
		address: cfg.Address,

		window:      cfg.BatchWindow,
		maxBatch:    cfg.MaxBatchSize,
		callTimeout: cfg.CallTimeout,
		ttl:         cfg.ResultTTL,

		store:   cfg.Store,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     time.Now,

		entries: entries,
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
	}, nil
}

// SubmitBatch registers calls and returns their current states, aligned 1:1 with calls.
// Unknown calls are queued for the next dispatch and reported as loading.
// A failed call reports its error once and is queued again.
func (s *Scheduler) SubmitBatch(calls []Call, opts Options) []CallState {
	states := make([]CallState, len(calls))
	if len(calls) == 0 {
		return states
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seen := make(map[string]CallState, len(calls))
	enqueued := false

	for i, call := range calls {
		key := call.Key()
		if st, ok := seen[key]; ok {
			states[i] = st
			s.metrics.CallsCoalesced.Inc()
			continue
		}

		e, ok := s.entries.Get(key)
		if !ok {
			e = &entry{call: Call{Target: call.Target, Data: bytes.Clone(call.Data)}}
			s.entries.Add(key, e)
			s.enqueue(key, e)
			enqueued = true
		} else {
			s.metrics.CallsCoalesced.Inc()
		}
		if opts.NeverReload {
			e.neverReload = true
		}

		var st CallState
		switch e.status {
		case statusFailed:
			st = CallState{Err: e.err}
			e.err = nil
			s.enqueue(key, e)
			enqueued = true
		case statusDone:
			st = CallState{Result: e.result}
			if s.stale(e, now) {
				s.enqueue(key, e)
				enqueued = true
			}
		default:
			if e.hasResult {
				st = CallState{Result: e.result}
			} else {
				st = CallState{Loading: true}
			}
		}

		seen[key] = st
		states[i] = st
	}

	if enqueued {
		s.metrics.PendingCalls.Set(float64(len(s.queue)))
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}

	return states
}

// Generation increases every time dispatched results are recorded.
func (s *Scheduler) Generation() uint64 {
	return s.generation.Load()
}

// Changed returns a channel closed at the next generation change.
func (s *Scheduler) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Preload seeds the scheduler with results kept in the store.
func (s *Scheduler) Preload(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	results, err := s.store.LoadResults(ctx)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("load").Inc()
		return errors.Wrap(err, "s.store.LoadResults")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, r := range results {
		if len(r.ReturnData) == 0 {
			continue
		}
		call := Call{Target: r.Target, Data: r.CallData}
		s.entries.Add(call.Key(), &entry{
			call:        call,
			status:      statusDone,
			hasResult:   true,
			result:      r.ReturnData,
			fetchedAt:   now,
			neverReload: true,
			persisted:   true,
		})
	}
	s.logger.Info("multicall results preloaded", zap.Int("results", len(results)))
	return nil
}

// Run dispatches queued calls until ctx is done. Calls submitted within one
// batch window share a dispatch.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		if s.window > 0 {
			timer := time.NewTimer(s.window)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		if err := s.Flush(ctx); err != nil {
			s.logger.Warn("multicall flush failed", zap.Error(err))
		}
	}
}

// Flush dispatches every queued call now, in chunks of at most MaxBatchSize.
// Transport errors of all chunks are combined in the returned error; the
// affected calls are marked failed.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := make([]*entry, 0, len(s.queue))
	for _, key := range s.queue {
		e, ok := s.entries.Peek(key)
		if !ok || !e.queued {
			// evicted while queued
			continue
		}
		e.queued = false
		e.status = statusInFlight
		batch = append(batch, e)
	}
	s.queue = nil
	s.metrics.PendingCalls.Set(0)
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var combinedErr error
	for start := 0; start < len(batch); start += s.maxBatch {
		end := min(start+s.maxBatch, len(batch))
		chunk := batch[start:end]

		results, err := s.dispatch(ctx, chunk)
		if err != nil {
			combinedErr = multierr.Append(combinedErr, err)
		}
		s.complete(chunk, results, err)
	}

	s.persist(ctx, batch)

	return combinedErr
}

func (s *Scheduler) dispatch(ctx context.Context, chunk []*entry) ([][]byte, error) {
	calls := make([]call3, len(chunk))
	for i, e := range chunk {
		calls[i] = call3{
			Target:       e.call.Target,
			AllowFailure: true,
			CallData:     e.call.Data,
		}
	}

	data, err := s.abi.Pack(AggregateMethod, calls)
	if err != nil {
		return nil, errors.Wrap(err, "s.abi.Pack")
	}

	ctxCall, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.caller.CallContract(
		ctxCall,
		ethereum.CallMsg{
			To:   &s.address,
			Data: data,
		},
		nil,
	)
	s.metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	s.metrics.BatchesDispatched.Inc()
	s.metrics.CallsDispatched.Add(float64(len(chunk)))
	if err != nil {
		s.metrics.DispatchErrors.Inc()
		return nil, errors.Wrap(err, "s.caller.CallContract")
	}

	out, err := s.abi.Unpack(AggregateMethod, res)
	if err != nil {
		s.metrics.DispatchErrors.Inc()
		return nil, errors.Wrap(err, "s.abi.Unpack")
	}
	if len(out) != 1 {
		s.metrics.DispatchErrors.Inc()
		return nil, errors.Errorf("unexpected outputs from %s call: expected 1, got %d", AggregateMethod, len(out))
	}

	decoded := *abi.ConvertType(out[0], new([]result3)).(*[]result3)
	if len(decoded) != len(chunk) {
		s.metrics.DispatchErrors.Inc()
		return nil, errors.Errorf("unexpected results from %s call: expected %d, got %d", AggregateMethod, len(chunk), len(decoded))
	}

	results := make([][]byte, len(chunk))
	for i, r := range decoded {
		if r.Success {
			results[i] = r.ReturnData
		}
	}
	return results, nil
}

func (s *Scheduler) complete(chunk []*entry, results [][]byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i, e := range chunk {
		switch {
		case err != nil && e.hasResult:
			// A failed refresh keeps serving the previous result.
			e.status = statusDone
		case err != nil:
			e.status = statusFailed
			e.err = err
		default:
			e.status = statusDone
			e.hasResult = true
			e.result = results[i]
			e.fetchedAt = now
		}
	}

	s.generation.Add(1)
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Scheduler) persist(ctx context.Context, batch []*entry) {
	if s.store == nil {
		return
	}

	s.mu.Lock()
	var toSave []storage.CallResult
	var saved []*entry
	for _, e := range batch {
		if e.persisted || !e.neverReload || e.status != statusDone || len(e.result) == 0 {
			continue
		}
		toSave = append(toSave, storage.CallResult{
			Target:     e.call.Target,
			CallData:   e.call.Data,
			ReturnData: e.result,
		})
		saved = append(saved, e)
	}
	s.mu.Unlock()

	if len(toSave) == 0 {
		return
	}

	if err := s.store.SaveResults(ctx, toSave); err != nil {
		s.metrics.StoreErrors.WithLabelValues("save").Inc()
		s.logger.Warn("save call results failed", zap.Int("results", len(toSave)), zap.Error(err))
		return
	}

	s.mu.Lock()
	for _, e := range saved {
		e.persisted = true
	}
	s.mu.Unlock()
}

// enqueue must be called with s.mu held.
func (s *Scheduler) enqueue(key string, e *entry) {
	if e.queued || e.status == statusInFlight {
		return
	}
	e.queued = true
	e.status = statusPending
	s.queue = append(s.queue, key)
}

// stale must be called with s.mu held.
func (s *Scheduler) stale(e *entry, now time.Time) bool {
	if e.neverReload && len(e.result) > 0 {
		return false
	}
	return s.ttl > 0 && now.Sub(e.fetchedAt) >= s.ttl
}
