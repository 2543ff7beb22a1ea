package storage

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// CallResult is the immutable outcome of one contract read.
type CallResult struct {
	Target     common.Address
	CallData   []byte
	ReturnData []byte
}

// ResultStore persists call results that never change once known,
// such as pair addresses returned by the registry.
type ResultStore interface {
	LoadResults(ctx context.Context) ([]CallResult, error)
	SaveResults(ctx context.Context, results []CallResult) error
}
