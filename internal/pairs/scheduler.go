package pairs

import "github.com/fleshka4/pair-resolver/internal/infra/multicall"

//go:generate mockgen -source=scheduler.go -destination=mock/mock_batch_scheduler.go -package=mock

// BatchScheduler batches contract reads. SubmitBatch must not block on the network
// and returns states aligned 1:1 with calls.
type BatchScheduler interface {
	SubmitBatch(calls []multicall.Call, opts multicall.Options) []multicall.CallState
}
