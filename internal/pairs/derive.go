package pairs

import (
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/apperrors"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// Derive combines the inputs of one query into its state. The first matching
// rule wins: loading reserves, then unusable tokens, then a missing address,
// then missing reserves.
//
// Reserves are assigned positionally: Reserve0 to c.Pair.Token0 and Reserve1 to
// c.Pair.Token1. The pair contract's own token order is not consulted here.
func Derive(q PairQuery, c token.Canonical, a AddressResult, r ReservesResult) Result {
	var res Result

	switch {
	case r.Status == ReservesLoading:
		res = LoadingResult()
	case !c.IsValid():
		res = InvalidResult()
	case a.Status != AddressFound:
		res = NotExistsResult()
	case r.Status == ReservesAbsent:
		res = NotExistsResult()
	default:
		res = ExistsResult(PairSnapshot{
			PairAddress:  a.Address,
			Token0Amount: TokenAmount{Token: c.Pair.Token0, Raw: r.Raw.Reserve0},
			Token1Amount: TokenAmount{Token: c.Pair.Token1, Raw: r.Raw.Reserve1},
		})
	}

	res.Index = q.Index
	return res
}

// DeriveAll runs Derive once per query. All sequences must be aligned with queries.
func DeriveAll(queries []PairQuery, canonical []token.Canonical, addrs []AddressResult, reserves []ReservesResult) ([]Result, error) {
	n := len(queries)
	if len(canonical) != n || len(addrs) != n || len(reserves) != n {
		return nil, errors.Wrapf(apperrors.ErrLengthMismatch,
			"queries %d, canonical %d, addresses %d, reserves %d", n, len(canonical), len(addrs), len(reserves))
	}

	results := make([]Result, n)
	for i := range queries {
		results[i] = Derive(queries[i], canonical[i], addrs[i], reserves[i])
	}
	return results, nil
}

// DeriveLiquidityToken describes the share token of a pair once its address is known.
// The share token lives on the chain of the first token.
func DeriveLiquidityToken(tokens [2]token.Token, c token.Canonical, a AddressResult) LiquidityPairToken {
	out := LiquidityPairToken{Tokens: tokens}
	if !c.IsValid() || a.Status != AddressFound {
		return out
	}

	lt := token.New(tokens[0].ChainID, a.Address, liquidityTokenDecimals, liquidityTokenSymbol, liquidityTokenName)
	out.LiquidityToken = &lt
	return out
}
