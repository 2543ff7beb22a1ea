package validate

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/apperrors"
	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/service/dto"
	"github.com/fleshka4/pair-resolver/internal/token"
)

// MaxQueries bounds the number of pairs in one request.
const MaxQueries = 1000

// ChainValidate validates the chain a request runs against.
func ChainValidate(chain pairs.Chain) error {
	if chain.ID == 0 {
		return errors.Wrap(apperrors.ErrInvalidArgument, "chain id cannot be zero")
	}
	if chain.Registry == (common.Address{}) {
		return errors.Wrap(apperrors.ErrInvalidArgument, "registry address cannot be empty")
	}
	return nil
}

// ResolvePairsRequestValidate validates business logic request.
func ResolvePairsRequestValidate(req dto.ResolvePairsRequest) error {
	if err := ChainValidate(req.Chain); err != nil {
		return err
	}
	if len(req.Queries) > MaxQueries {
		return errors.Wrapf(apperrors.ErrInvalidArgument, "too many queries: %d > %d", len(req.Queries), MaxQueries)
	}

	for i, q := range req.Queries {
		if err := optionalTokenValidate(q.TokenA); err != nil {
			return errors.Wrapf(err, "query %d: token a", i)
		}
		if err := optionalTokenValidate(q.TokenB); err != nil {
			return errors.Wrapf(err, "query %d: token b", i)
		}
	}
	return nil
}

// ResolveSinglePairRequestValidate validates business logic request.
func ResolveSinglePairRequestValidate(req dto.ResolveSinglePairRequest) error {
	if err := ChainValidate(req.Chain); err != nil {
		return err
	}
	if err := optionalTokenValidate(req.TokenA); err != nil {
		return errors.Wrap(err, "token a")
	}
	if err := optionalTokenValidate(req.TokenB); err != nil {
		return errors.Wrap(err, "token b")
	}
	return nil
}

// ResolveLiquidityTokensRequestValidate validates business logic request.
func ResolveLiquidityTokensRequestValidate(req dto.ResolveLiquidityTokensRequest) error {
	if err := ChainValidate(req.Chain); err != nil {
		return err
	}
	if len(req.Pairs) > MaxQueries {
		return errors.Wrapf(apperrors.ErrInvalidArgument, "too many pairs: %d > %d", len(req.Pairs), MaxQueries)
	}

	for i, p := range req.Pairs {
		for j := range p {
			if err := TokenValidate(p[j]); err != nil {
				return errors.Wrapf(err, "pair %d: token %d", i, j)
			}
		}
	}
	return nil
}

// TokenValidate validates a token description.
func TokenValidate(t token.Token) error {
	if t.ChainID == 0 {
		return errors.Wrap(apperrors.ErrInvalidArgument, "token chain id cannot be zero")
	}
	if t.Address == (common.Address{}) {
		return errors.Wrap(apperrors.ErrInvalidArgument, "token address cannot be empty")
	}
	return nil
}

func optionalTokenValidate(t *token.Token) error {
	if t == nil {
		return nil
	}
	return TokenValidate(*t)
}
