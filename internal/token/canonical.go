package token

// Kind is the outcome of canonicalizing two optional tokens.
type Kind uint8

const (
	// Incomplete means at least one token is not known yet.
	Incomplete Kind = iota
	// Degenerate means both tokens are the same.
	Degenerate
	// Valid means Pair holds an ordered pair of distinct tokens.
	Valid
)

func (k Kind) String() string {
	switch k {
	case Incomplete:
		return "incomplete"
	case Degenerate:
		return "degenerate"
	case Valid:
		return "valid"
	default:
		return "unknown"
	}
}

// Canonical is the result of Canonicalize. Pair is only meaningful when Kind is Valid.
type Canonical struct {
	Kind Kind
	Pair CanonicalPair
}

// IsValid reports whether c holds a usable pair.
func (c Canonical) IsValid() bool {
	return c.Kind == Valid
}

// Canonicalize orders two optional tokens. The result does not depend on the
// argument order.
func Canonicalize(a, b *Token) Canonical {
	if a == nil || b == nil {
		return Canonical{Kind: Incomplete}
	}
	pair, err := NewCanonicalPair(*a, *b)
	if err != nil {
		return Canonical{Kind: Degenerate}
	}
	return Canonical{Kind: Valid, Pair: pair}
}
