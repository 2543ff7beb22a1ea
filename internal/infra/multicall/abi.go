package multicall

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultAddress is the Multicall3 deployment shared by most EVM chains.
var DefaultAddress = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

// AggregateMethod is the Multicall3 method used for batches.
const AggregateMethod = "aggregate3"

// Multicall3 aggregate3 ABI.
const multicallABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          { "internalType": "address", "name": "target",       "type": "address" },
          { "internalType": "bool",    "name": "allowFailure", "type": "bool"    },
          { "internalType": "bytes",   "name": "callData",     "type": "bytes"   }
        ],
        "internalType": "struct Multicall3.Call3[]",
        "name": "calls",
        "type": "tuple[]"
      }
    ],
    "name": "aggregate3",
    "outputs": [
      {
        "components": [
          { "internalType": "bool",  "name": "success",    "type": "bool"  },
          { "internalType": "bytes", "name": "returnData", "type": "bytes" }
        ],
        "internalType": "struct Multicall3.Result[]",
        "name": "returnData",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "payable",
    "type": "function"
  }
]`

// call3 mirrors Multicall3.Call3.
type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// result3 mirrors Multicall3.Result.
type result3 struct {
	Success    bool
	ReturnData []byte
}

var (
	multicallABI     abi.ABI
	multicallABIOnce sync.Once
	multicallABIErr  error
)

// ParsedABI returns the parsed Multicall3 ABI.
func ParsedABI() (abi.ABI, error) {
	multicallABIOnce.Do(func() {
		multicallABI, multicallABIErr = abi.JSON(strings.NewReader(multicallABIJSON))
	})
	return multicallABI, multicallABIErr
}
