// Package pairs resolves pair addresses and reserves for token queries and derives their state.
package pairs

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fleshka4/pair-resolver/internal/apperrors"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// Chain is the chain a pass runs against.
type Chain struct {
	ID       uint64
	Registry common.Address
}

// PairQuery is one requested pair. Nil tokens are not known yet.
type PairQuery struct {
	Index  int
	TokenA *token.Token
	TokenB *token.Token
}

// AddressStatus is the outcome of a registry lookup.
type AddressStatus uint8

const (
	// AddressUnresolved means the lookup is still outstanding.
	AddressUnresolved AddressStatus = iota
	// AddressNotFound means there is no pair, or no lookup was made.
	AddressNotFound
	// AddressFound means Address holds the pair contract.
	AddressFound
)

// AddressResult is the resolved address of one canonical pair.
type AddressResult struct {
	Status  AddressStatus
	Address common.Address
}

// ReservesStatus is the outcome of a reserves read.
type ReservesStatus uint8

const (
	ReservesLoading ReservesStatus = iota
	ReservesAbsent
	ReservesPresent
)

// RawReserves are the pair reserves in the order the pair contract returns them.
type RawReserves struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// ReservesResult is the reserves read of one pair address.
type ReservesResult struct {
	Status ReservesStatus
	Raw    RawReserves
}

// State is the resolution state of a pair.
type State uint8

const (
	StateLoading State = iota
	StateNotExists
	StateExists
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateNotExists:
		return "NOT_EXISTS"
	case StateExists:
		return "EXISTS"
	case StateInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LOADING":
		*s = StateLoading
	case "NOT_EXISTS":
		*s = StateNotExists
	case "EXISTS":
		*s = StateExists
	case "INVALID":
		*s = StateInvalid
	default:
		return errors.Errorf("unknown pair state %q", text)
	}
	return nil
}

// TokenAmount is a raw on-chain amount of a token.
type TokenAmount struct {
	Token token.Token
	Raw   *big.Int
}

// Exact returns the amount scaled by the token decimals.
func (a TokenAmount) Exact() decimal.Decimal {
	if a.Raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.Raw, -int32(a.Token.Decimals))
}

// PairSnapshot holds the reserves of an existing pair.
type PairSnapshot struct {
	PairAddress  common.Address
	Token0Amount TokenAmount
	Token1Amount TokenAmount
}

// ReserveOf returns the reserve of t.
func (p PairSnapshot) ReserveOf(t token.Token) (TokenAmount, error) {
	switch {
	case p.Token0Amount.Token.Equals(t):
		return p.Token0Amount, nil
	case p.Token1Amount.Token.Equals(t):
		return p.Token1Amount, nil
	default:
		return TokenAmount{}, errors.Wrapf(apperrors.ErrTokenNotInPair, "%s", t)
	}
}

// Result is the derived state of one query. Snapshot is set only for StateExists.
type Result struct {
	Index    int
	State    State
	Snapshot *PairSnapshot
}

// LoadingResult reports a pair whose data is still outstanding.
func LoadingResult() Result {
	return Result{State: StateLoading}
}

// InvalidResult reports a query with missing or identical tokens.
func InvalidResult() Result {
	return Result{State: StateInvalid}
}

// NotExistsResult reports a pair that is not deployed.
func NotExistsResult() Result {
	return Result{State: StateNotExists}
}

// ExistsResult reports an existing pair with its reserves.
func ExistsResult(snapshot PairSnapshot) Result {
	return Result{State: StateExists, Snapshot: &snapshot}
}

// Pending reports whether r may still change within the same query set.
func (r Result) Pending() bool {
	return r.State == StateLoading
}

// AnyPending reports whether any result is still loading.
func AnyPending(results []Result) bool {
	for _, r := range results {
		if r.Pending() {
			return true
		}
	}
	return false
}

const (
	liquidityTokenDecimals = 18
	liquidityTokenSymbol   = "MGP"
	liquidityTokenName     = "Mesh Generic Pair"
)

// LiquidityPairToken describes the share token of a pair. LiquidityToken is nil
// until the pair address is known.
type LiquidityPairToken struct {
	LiquidityToken *token.Token
	Tokens         [2]token.Token
}
