package pairs

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/fleshka4/pair-resolver/internal/token"
)

// PassKey identifies a query set on a chain. Results computed for one key must
// not be served for another.
func PassKey(chain Chain, queries []PairQuery) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(chain.ID, 10))
	b.WriteByte('|')
	b.WriteString(chain.Registry.Hex())

	for _, q := range queries {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(q.Index))
		b.WriteByte(',')
		writeTokenKey(&b, q.TokenA)
		b.WriteByte(',')
		writeTokenKey(&b, q.TokenB)
	}

	return crypto.Keccak256Hash([]byte(b.String())).Hex()
}

func writeTokenKey(b *strings.Builder, t *token.Token) {
	if t == nil {
		b.WriteByte('-')
		return
	}
	b.WriteString(strconv.FormatUint(t.ChainID, 10))
	b.WriteByte(':')
	b.WriteString(t.Address.Hex())
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(t.Decimals)))
	b.WriteByte(':')
	b.WriteString(strconv.Quote(t.Symbol))
	b.WriteByte(':')
	b.WriteString(strconv.Quote(t.Name))
}
