package apperrors

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when the request parameters are invalid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegeneratePair is returned when a canonical pair is built from two
	// identical tokens.
	ErrDegeneratePair = errors.New("identical tokens")

	// ErrLengthMismatch is returned when derivation receives sequences that are
	// not aligned with the query sequence. It indicates a caller bug.
	ErrLengthMismatch = errors.New("sequence length mismatch")

	// ErrTokenNotInPair is returned when a token is looked up in a pair it does
	// not belong to.
	ErrTokenNotInPair = errors.New("token is not part of the pair")
)
