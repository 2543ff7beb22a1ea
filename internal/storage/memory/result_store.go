package memory

import (
	"context"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/fleshka4/pair-resolver/internal/storage"
)

// ResultStore keeps call results in process memory.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]storage.CallResult
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

func NewResultStore() *ResultStore {
	return &ResultStore{data: make(map[string]storage.CallResult)}
}

// LoadResults returns every stored result ordered by key.
func (s *ResultStore) LoadResults(_ context.Context) ([]storage.CallResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]storage.CallResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(s.data[k]))
	}
	return out, nil
}

// SaveResults upserts results. Later writes for the same call win.
func (s *ResultStore) SaveResults(_ context.Context, results []storage.CallResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		s.data[key(r)] = clone(r)
	}
	return nil
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func key(r storage.CallResult) string {
	return r.Target.Hex() + ":" + hex.EncodeToString(r.CallData)
}

func clone(r storage.CallResult) storage.CallResult {
	return storage.CallResult{
		Target:     r.Target,
		CallData:   append([]byte(nil), r.CallData...),
		ReturnData: append([]byte(nil), r.ReturnData...),
	}
}
