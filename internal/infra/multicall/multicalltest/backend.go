// Package multicalltest provides an in-memory Multicall3 backend for tests.
package multicalltest

import (
	"bytes"
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
)

// Handler answers one sub-call. ok is false for a reverted call.
type Handler func(callData []byte) (returnData []byte, ok bool)

type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type result3 struct {
	Success    bool
	ReturnData []byte
}

// Backend answers aggregate3 calls with registered per-target handlers.
// Sub-calls to targets without a handler revert.
type Backend struct {
	mu       sync.Mutex
	handlers map[common.Address]Handler
	err      error
	batches  int
	subCalls []multicall.Call
}

// NewBackend creates an empty Backend.
func NewBackend() *Backend {
	return &Backend{handlers: make(map[common.Address]Handler)}
}

// Handle registers h for sub-calls to target.
func (b *Backend) Handle(target common.Address, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[target] = h
}

// FailWith makes every aggregate call fail with err. A nil err restores normal operation.
func (b *Backend) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Batches returns the number of aggregate calls received.
func (b *Backend) Batches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batches
}

// SubCalls returns every sub-call received, in arrival order.
func (b *Backend) SubCalls() []multicall.Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]multicall.Call(nil), b.subCalls...)
}

// CountSubCalls returns how many received sub-calls were sent to target with data.
func (b *Backend) CountSubCalls(target common.Address, data []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, c := range b.subCalls {
		if c.Target == target && bytes.Equal(c.Data, data) {
			n++
		}
	}
	return n
}

// CallContract implements multicall.EthCaller.
func (b *Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := multicall.ParsedABI()
	if err != nil {
		return nil, err
	}
	method := parsed.Methods[multicall.AggregateMethod]

	if len(msg.Data) < 4 || !bytes.Equal(msg.Data[:4], method.ID) {
		return nil, errors.New("unexpected method selector")
	}

	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, errors.Wrap(err, "method.Inputs.Unpack")
	}
	calls := *abi.ConvertType(args[0], new([]call3)).(*[]call3)

	b.mu.Lock()
	b.batches++
	if b.err != nil {
		err := b.err
		b.mu.Unlock()
		return nil, err
	}
	handlers := make([]Handler, len(calls))
	for i, c := range calls {
		b.subCalls = append(b.subCalls, multicall.Call{Target: c.Target, Data: bytes.Clone(c.CallData)})
		handlers[i] = b.handlers[c.Target]
	}
	b.mu.Unlock()

	results := make([]result3, len(calls))
	for i, c := range calls {
		if handlers[i] == nil {
			continue
		}
		data, ok := handlers[i](c.CallData)
		results[i] = result3{Success: ok, ReturnData: data}
	}

	return method.Outputs.Pack(results)
}
