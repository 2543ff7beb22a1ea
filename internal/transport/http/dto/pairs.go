package dto

import (
	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// ResolvePairsRequest represents a parsed HTTP request for the /pairs endpoint.
type ResolvePairsRequest struct {
	Queries []pairs.PairQuery
}

// ResolvePairRequest represents a parsed HTTP request for the /pair endpoint.
type ResolvePairRequest struct {
	TokenA *token.Token
	TokenB *token.Token
}

// ResolveLiquidityTokensRequest represents a parsed HTTP request for the /liquidity-tokens endpoint.
type ResolveLiquidityTokensRequest struct {
	Pairs [][2]token.Token
}
