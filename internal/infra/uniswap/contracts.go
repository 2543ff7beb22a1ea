package uniswap

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
)

const factoryABIJSON = `[
	{"inputs":[{"internalType":"address","name":"","type":"address"},{"internalType":"address","name":"","type":"address"}],"name":"getPair","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

const pairABIJSON = `[
	{"inputs":[],"name":"token0","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"token1","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getReserves","outputs":[{"internalType":"uint112","name":"_reserve0","type":"uint112"},{"internalType":"uint112","name":"_reserve1","type":"uint112"},{"internalType":"uint32","name":"_blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"}
]`

const (
	getPairMethod     = "getPair"
	getReservesMethod = "getReserves"
	token0Method      = "token0"
)

// ErrEmptyData is returned when a call settled without return data.
var ErrEmptyData = errors.New("empty return data")

// Codec builds and decodes the registry and pair reads of a Uniswap V2 style exchange.
type Codec struct {
	factoryABI abi.ABI
	pairABI    abi.ABI
}

// NewCodec parses the registry and pair ABIs.
func NewCodec() (*Codec, error) {
	factoryABI, err := abi.JSON(strings.NewReader(factoryABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}

	pairABI, err := abi.JSON(strings.NewReader(pairABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}

	return &Codec{
		factoryABI: factoryABI,
		pairABI:    pairABI,
	}, nil
}

// GetPairCall returns the registry read asking for the pair of tokenA and tokenB.
func (c *Codec) GetPairCall(registry, tokenA, tokenB common.Address) (multicall.Call, error) {
	data, err := c.factoryABI.Pack(getPairMethod, tokenA, tokenB)
	if err != nil {
		return multicall.Call{}, errors.Wrap(err, "c.factoryABI.Pack")
	}
	return multicall.Call{Target: registry, Data: data}, nil
}

// GetReservesCall returns the pair read for its current reserves.
func (c *Codec) GetReservesCall(pair common.Address) (multicall.Call, error) {
	data, err := c.pairABI.Pack(getReservesMethod)
	if err != nil {
		return multicall.Call{}, errors.Wrap(err, "c.pairABI.Pack")
	}
	return multicall.Call{Target: pair, Data: data}, nil
}

// Token0Call returns the pair read for its first token.
func (c *Codec) Token0Call(pair common.Address) (multicall.Call, error) {
	data, err := c.pairABI.Pack(token0Method)
	if err != nil {
		return multicall.Call{}, errors.Wrap(err, "c.pairABI.Pack")
	}
	return multicall.Call{Target: pair, Data: data}, nil
}

// DecodePairAddress decodes the getPair result.
func (c *Codec) DecodePairAddress(data []byte) (common.Address, error) {
	return c.decodeAddress(c.factoryABI, getPairMethod, data)
}

// DecodeToken0 decodes the token0 result.
func (c *Codec) DecodeToken0(data []byte) (common.Address, error) {
	return c.decodeAddress(c.pairABI, token0Method, data)
}

// DecodeReserves decodes the getReserves result into reserve0 and reserve1.
func (c *Codec) DecodeReserves(data []byte) (*big.Int, *big.Int, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyData
	}

	out, err := c.pairABI.Unpack(getReservesMethod, data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "c.pairABI.Unpack")
	}

	const requiredSize = 2
	if len(out) < requiredSize {
		return nil, nil, errors.Errorf("insufficient outputs from getReserves call: expected %d, got %d", requiredSize, len(out))
	}

	reserves := make([]*big.Int, requiredSize)
	reserveNames := []string{"reserve0", "reserve1"}

	for i := 0; i < requiredSize; i++ {
		reserve, ok := out[i].(*big.Int)
		if !ok {
			return nil, nil, errors.Errorf("failed to cast %s to *big.Int", reserveNames[i])
		}
		reserves[i] = reserve
	}

	return reserves[0], reserves[1], nil
}

// DecodeGetPairArgs decodes the token arguments of getPair calldata.
func (c *Codec) DecodeGetPairArgs(data []byte) (common.Address, common.Address, error) {
	method := c.factoryABI.Methods[getPairMethod]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return common.Address{}, common.Address{}, errors.New("not a getPair call")
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, common.Address{}, errors.Wrap(err, "method.Inputs.Unpack")
	}

	tokenA, okA := args[0].(common.Address)
	tokenB, okB := args[1].(common.Address)
	if !okA || !okB {
		return common.Address{}, common.Address{}, errors.New("failed to cast getPair arguments to address")
	}
	return tokenA, tokenB, nil
}

// EncodePairAddress encodes a getPair result.
func (c *Codec) EncodePairAddress(pair common.Address) ([]byte, error) {
	data, err := c.factoryABI.Methods[getPairMethod].Outputs.Pack(pair)
	if err != nil {
		return nil, errors.Wrap(err, "Outputs.Pack")
	}
	return data, nil
}

// EncodeReserves encodes a getReserves result.
func (c *Codec) EncodeReserves(reserve0, reserve1 *big.Int, blockTimestamp uint32) ([]byte, error) {
	data, err := c.pairABI.Methods[getReservesMethod].Outputs.Pack(reserve0, reserve1, blockTimestamp)
	if err != nil {
		return nil, errors.Wrap(err, "Outputs.Pack")
	}
	return data, nil
}

// EncodeToken0 encodes a token0 result.
func (c *Codec) EncodeToken0(token0 common.Address) ([]byte, error) {
	data, err := c.pairABI.Methods[token0Method].Outputs.Pack(token0)
	if err != nil {
		return nil, errors.Wrap(err, "Outputs.Pack")
	}
	return data, nil
}

func (c *Codec) decodeAddress(contractABI abi.ABI, method string, data []byte) (common.Address, error) {
	if len(data) == 0 {
		return common.Address{}, ErrEmptyData
	}

	out, err := contractABI.Unpack(method, data)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "contractABI.Unpack")
	}
	if len(out) == 0 {
		return common.Address{}, errors.Errorf("no outputs from %s call", method)
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("failed to cast %s result to address", method)
	}
	return addr, nil
}
