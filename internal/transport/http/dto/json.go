package dto

import (
	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// Token is the wire form of a token.
type Token struct {
	ChainID  uint64 `json:"chain_id"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}

// PairQuery is one requested pair. A null token is not known yet.
type PairQuery struct {
	TokenA *Token `json:"token_a"`
	TokenB *Token `json:"token_b"`
}

// ResolvePairsBody is the body of POST /pairs.
type ResolvePairsBody struct {
	Queries []PairQuery `json:"queries"`
}

// LiquidityPair is a pair of known tokens.
type LiquidityPair struct {
	TokenA Token `json:"token_a"`
	TokenB Token `json:"token_b"`
}

// LiquidityTokensBody is the body of POST /liquidity-tokens.
type LiquidityTokensBody struct {
	Pairs []LiquidityPair `json:"pairs"`
}

// Amount is a token amount, raw and scaled by the token decimals.
type Amount struct {
	Token Token  `json:"token"`
	Raw   string `json:"raw"`
	Exact string `json:"exact"`
}

// Pair holds the reserves of an existing pair.
type Pair struct {
	Address string `json:"address"`
	Token0  Amount `json:"token0"`
	Token1  Amount `json:"token1"`
}

// PairResult is the state of one requested pair.
type PairResult struct {
	Index int         `json:"index"`
	State pairs.State `json:"state"`
	Pair  *Pair       `json:"pair"`
}

// LiquidityToken is the share token of one requested pair.
type LiquidityToken struct {
	LiquidityToken *Token   `json:"liquidity_token"`
	Tokens         [2]Token `json:"tokens"`
}

// LiquidityTokensResponse is the response of POST /liquidity-tokens.
type LiquidityTokensResponse struct {
	Pending bool             `json:"pending"`
	Items   []LiquidityToken `json:"items"`
}

// NewToken converts t to its wire form.
func NewToken(t token.Token) Token {
	return Token{
		ChainID:  t.ChainID,
		Address:  t.Address.Hex(),
		Decimals: int(t.Decimals),
		Symbol:   t.Symbol,
		Name:     t.Name,
	}
}

// NewAmount converts a to its wire form.
func NewAmount(a pairs.TokenAmount) Amount {
	out := Amount{Token: NewToken(a.Token), Raw: "0"}
	if a.Raw != nil {
		out.Raw = a.Raw.String()
	}
	out.Exact = a.Exact().String()
	return out
}

// NewPairResult converts r to its wire form.
func NewPairResult(r pairs.Result) PairResult {
	out := PairResult{Index: r.Index, State: r.State}
	if r.Snapshot != nil {
		out.Pair = &Pair{
			Address: r.Snapshot.PairAddress.Hex(),
			Token0:  NewAmount(r.Snapshot.Token0Amount),
			Token1:  NewAmount(r.Snapshot.Token1Amount),
		}
	}
	return out
}

// NewPairResults converts results to their wire form.
func NewPairResults(results []pairs.Result) []PairResult {
	out := make([]PairResult, len(results))
	for i, r := range results {
		out[i] = NewPairResult(r)
	}
	return out
}

// NewLiquidityTokensResponse converts share tokens to their wire form.
func NewLiquidityTokensResponse(items []pairs.LiquidityPairToken, pending bool) LiquidityTokensResponse {
	out := LiquidityTokensResponse{
		Pending: pending,
		Items:   make([]LiquidityToken, len(items)),
	}
	for i, item := range items {
		out.Items[i].Tokens = [2]Token{NewToken(item.Tokens[0]), NewToken(item.Tokens[1])}
		if item.LiquidityToken != nil {
			lt := NewToken(*item.LiquidityToken)
			out.Items[i].LiquidityToken = &lt
		}
	}
	return out
}
