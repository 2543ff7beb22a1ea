package validate

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/pairs"
	"github.com/fleshka4/pair-resolver/internal/token"
	"github.com/fleshka4/pair-resolver/internal/transport/http/dto"
)

const (
	maxBodyBytes = 1 << 20
	maxDecimals  = 77
)

// ResolvePairsRequestValidate validates /pairs request and returns dto.
func ResolvePairsRequestValidate(r *http.Request) (*dto.ResolvePairsRequest, int, error) {
	var body dto.ResolvePairsBody
	if code, err := decodeBody(r, &body); err != nil {
		return nil, code, err
	}

	queries, err := PairQueries(body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return &dto.ResolvePairsRequest{Queries: queries}, 0, nil
}

// PairQueries converts a decoded /pairs body into queries indexed by position.
func PairQueries(body dto.ResolvePairsBody) ([]pairs.PairQuery, error) {
	queries := make([]pairs.PairQuery, len(body.Queries))
	for i, q := range body.Queries {
		tokenA, err := optionalToken(q.TokenA)
		if err != nil {
			return nil, errors.Wrapf(err, "queries[%d].token_a", i)
		}
		tokenB, err := optionalToken(q.TokenB)
		if err != nil {
			return nil, errors.Wrapf(err, "queries[%d].token_b", i)
		}
		queries[i] = pairs.PairQuery{Index: i, TokenA: tokenA, TokenB: tokenB}
	}
	return queries, nil
}

// ResolvePairRequestValidate validates /pair request and returns dto.
func ResolvePairRequestValidate(r *http.Request) (*dto.ResolvePairRequest, int, error) {
	var body dto.PairQuery
	if code, err := decodeBody(r, &body); err != nil {
		return nil, code, err
	}

	tokenA, err := optionalToken(body.TokenA)
	if err != nil {
		return nil, http.StatusBadRequest, errors.Wrap(err, "token_a")
	}
	tokenB, err := optionalToken(body.TokenB)
	if err != nil {
		return nil, http.StatusBadRequest, errors.Wrap(err, "token_b")
	}

	return &dto.ResolvePairRequest{TokenA: tokenA, TokenB: tokenB}, 0, nil
}

// ResolveLiquidityTokensRequestValidate validates /liquidity-tokens request and returns dto.
func ResolveLiquidityTokensRequestValidate(r *http.Request) (*dto.ResolveLiquidityTokensRequest, int, error) {
	var body dto.LiquidityTokensBody
	if code, err := decodeBody(r, &body); err != nil {
		return nil, code, err
	}

	out := make([][2]token.Token, len(body.Pairs))
	for i, p := range body.Pairs {
		tokenA, err := parseToken(p.TokenA)
		if err != nil {
			return nil, http.StatusBadRequest, errors.Wrapf(err, "pairs[%d].token_a", i)
		}
		tokenB, err := parseToken(p.TokenB)
		if err != nil {
			return nil, http.StatusBadRequest, errors.Wrapf(err, "pairs[%d].token_b", i)
		}
		if tokenA.ChainID != tokenB.ChainID {
			return nil, http.StatusBadRequest, errors.Errorf("pairs[%d]: tokens are on different chains", i)
		}
		out[i] = [2]token.Token{tokenA, tokenB}
	}

	return &dto.ResolveLiquidityTokensRequest{Pairs: out}, 0, nil
}

func decodeBody(r *http.Request, v any) (int, error) {
	if r.Method != http.MethodPost {
		return http.StatusMethodNotAllowed, errors.New("method not allowed")
	}
	if r.Body == nil {
		return http.StatusBadRequest, errors.New("missing body")
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return http.StatusBadRequest, errors.Wrap(err, "bad json body")
	}
	return 0, nil
}

func optionalToken(t *dto.Token) (*token.Token, error) {
	if t == nil {
		return nil, nil
	}
	parsed, err := parseToken(*t)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseToken(t dto.Token) (token.Token, error) {
	if t.ChainID == 0 {
		return token.Token{}, errors.New("chain_id cannot be zero")
	}
	if !common.IsHexAddress(t.Address) {
		return token.Token{}, errors.New("bad address format")
	}
	addr := common.HexToAddress(t.Address)
	if addr == (common.Address{}) {
		return token.Token{}, errors.New("address cannot be empty")
	}
	if t.Decimals < 0 || t.Decimals > maxDecimals {
		return token.Token{}, errors.Errorf("decimals must be within [0, %d]", maxDecimals)
	}

	return token.New(t.ChainID, addr, uint8(t.Decimals), t.Symbol, t.Name), nil
}
