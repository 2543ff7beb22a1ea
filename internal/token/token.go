package token

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/apperrors"
)

// Token identifies an ERC20 token on a specific chain.
type Token struct {
	ChainID  uint64
	Address  common.Address
	Decimals uint8
	Symbol   string
	Name     string
}

// New creates a Token.
func New(chainID uint64, address common.Address, decimals uint8, symbol, name string) Token {
	return Token{
		ChainID:  chainID,
		Address:  address,
		Decimals: decimals,
		Symbol:   symbol,
		Name:     name,
	}
}

// Equals reports whether both tokens live on the same chain at the same address.
// Metadata is ignored.
func (t Token) Equals(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// SortsBefore reports whether t orders before other by address. Equal addresses
// on different chains order by chain ID.
func (t Token) SortsBefore(other Token) bool {
	if c := bytes.Compare(t.Address.Bytes(), other.Address.Bytes()); c != 0 {
		return c < 0
	}
	return t.ChainID < other.ChainID
}

func (t Token) String() string {
	if t.Symbol == "" {
		return fmt.Sprintf("%d:%s", t.ChainID, t.Address.Hex())
	}
	return fmt.Sprintf("%d:%s(%s)", t.ChainID, t.Address.Hex(), t.Symbol)
}

// CanonicalPair is a pair of distinct tokens with Token0 sorting before Token1.
type CanonicalPair struct {
	Token0 Token
	Token1 Token
}

// NewCanonicalPair orders a and b. Identical tokens are rejected.
func NewCanonicalPair(a, b Token) (CanonicalPair, error) {
	if a.Equals(b) {
		return CanonicalPair{}, errors.Wrapf(apperrors.ErrDegeneratePair, "%s", a)
	}
	if a.SortsBefore(b) {
		return CanonicalPair{Token0: a, Token1: b}, nil
	}
	return CanonicalPair{Token0: b, Token1: a}, nil
}

// Involves reports whether t is one of the pair's tokens.
func (p CanonicalPair) Involves(t Token) bool {
	return p.Token0.Equals(t) || p.Token1.Equals(t)
}

// Key identifies the pair independently of token metadata.
func (p CanonicalPair) Key() string {
	return fmt.Sprintf("%d:%s:%d:%s", p.Token0.ChainID, p.Token0.Address.Hex(), p.Token1.ChainID, p.Token1.Address.Hex())
}
