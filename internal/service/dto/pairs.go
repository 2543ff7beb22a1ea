package dto

import (
	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// ResolvePairsRequest asks for the state of several pairs on one chain.
type ResolvePairsRequest struct {
	Chain   pairs.Chain
	Queries []pairs.PairQuery
}

// ResolveSinglePairRequest asks for the state of one pair. Nil tokens are not known yet.
type ResolveSinglePairRequest struct {
	Chain  pairs.Chain
	TokenA *token.Token
	TokenB *token.Token
}

// ResolveLiquidityTokensRequest asks for the share tokens of several pairs.
type ResolveLiquidityTokensRequest struct {
	Chain pairs.Chain
	Pairs [][2]token.Token
}

// LiquidityTokensResult holds share tokens aligned with the requested pairs.
type LiquidityTokensResult struct {
	Items   []pairs.LiquidityPairToken
	Pending bool
}
