package pairs

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/fleshka4/pair-resolver/internal/token"
)

const testChainID = 1

var (
	tk0 = token.New(testChainID, common.HexToAddress("0x1"), 18, "TK0", "Token 0")
	tk1 = token.New(testChainID, common.HexToAddress("0x2"), 6, "TK1", "Token 1")
	tk2 = token.New(testChainID, common.HexToAddress("0x3"), 8, "TK2", "Token 2")

	testRegistry = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	testPair     = common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")
	otherPair    = common.HexToAddress("0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11")

	testChain = Chain{ID: testChainID, Registry: testRegistry}
)

func ptr(t token.Token) *token.Token {
	return &t
}
