package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fleshka4/pair-resolver/internal/apperrors"
	servicedto "github.com/fleshka4/pair-resolver/internal/service/dto"
	"github.com/fleshka4/pair-resolver/internal/transport/http/dto"
	"github.com/fleshka4/pair-resolver/internal/transport/http/validate"
)

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.ResolvePairsRequestValidate(r)
	if err != nil {
		s.writeValidationError(w, code, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	results, err := s.svc.ResolvePairs(ctx, servicedto.ResolvePairsRequest{
		Chain:   s.chain,
		Queries: req.Queries,
	})
	if err != nil {
		s.writeServiceError(w, "pairs", err)
		return
	}

	s.writeJSON(w, dto.NewPairResults(results))
}

func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.ResolvePairRequestValidate(r)
	if err != nil {
		s.writeValidationError(w, code, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	result, err := s.svc.ResolveSinglePair(ctx, servicedto.ResolveSinglePairRequest{
		Chain:  s.chain,
		TokenA: req.TokenA,
		TokenB: req.TokenB,
	})
	if err != nil {
		s.writeServiceError(w, "pair", err)
		return
	}

	s.writeJSON(w, dto.NewPairResult(result))
}

func (s *Server) handleLiquidityTokens(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.ResolveLiquidityTokensRequestValidate(r)
	if err != nil {
		s.writeValidationError(w, code, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	out, err := s.svc.ResolveLiquidityTokens(ctx, servicedto.ResolveLiquidityTokensRequest{
		Chain: s.chain,
		Pairs: req.Pairs,
	})
	if err != nil {
		s.writeServiceError(w, "liquidity-tokens", err)
		return
	}

	s.writeJSON(w, dto.NewLiquidityTokensResponse(out.Items, out.Pending))
}

func (s *Server) writeValidationError(w http.ResponseWriter, code int, err error) {
	if code == 0 {
		code = http.StatusBadRequest
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) writeServiceError(w http.ResponseWriter, route string, err error) {
	if errors.Is(err, apperrors.ErrInvalidArgument) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error("request failed", zap.String("route", route), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write error", zap.Error(err))
	}
}
