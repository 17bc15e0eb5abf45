// Package oracletest provides an in-memory EVM chain that answers Multicall3
// aggregate3 calls with ERC-20 symbol/name/decimals reads.
package oracletest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const multicall3JSON = `[{"inputs":[{"components":[{"name":"target","type":"address"},{"name":"allowFailure","type":"bool"},{"name":"callData","type":"bytes"}],"name":"calls","type":"tuple[]"}],"name":"aggregate3","outputs":[{"components":[{"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}],"name":"returnData","type":"tuple[]"}],"stateMutability":"payable","type":"function"}]`

const erc20JSON = `[
  {"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var (
	multicallABI = mustParse(multicall3JSON)
	erc20ABI     = mustParse(erc20JSON)
)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type result3 struct {
	Success    bool
	ReturnData []byte
}

// Token on-chain state of one ERC-20 contract
type Token struct {
	Symbol   string
	Name     string
	Decimals uint8
	// Reverts lists methods ("symbol", "name", "decimals") that revert
	Reverts map[string]bool
	// Bytes32 returns symbol as bytes32 like old MKR-style tokens
	Bytes32 bool
}

// Chain answers eth_call to Multicall3. Addresses without a Token behave
// like accounts without code: every call succeeds with empty data.
type Chain struct {
	mu         sync.Mutex
	tokens     map[common.Address]Token
	fail       error
	calls      int
	batchSizes []int
	closed     bool
}

// NewChain creates an empty chain
func NewChain() *Chain {
	return &Chain{tokens: make(map[common.Address]Token)}
}

// Add deploys a token at address
func (c *Chain) Add(address string, token Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[common.HexToAddress(address)] = token
}

// FailWith makes every following eth_call fail with err (nil restores)
func (c *Chain) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// Calls number of eth_call requests received
func (c *Chain) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// BatchSizes addresses per aggregate3 call, in arrival order
func (c *Chain) BatchSizes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.batchSizes...)
}

// Closed reports whether Close was called
func (c *Chain) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Chain) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.fail != nil {
		return nil, c.fail
	}

	method := multicallABI.Methods["aggregate3"]
	if len(msg.Data) < 4 || string(msg.Data[:4]) != string(method.ID) {
		return nil, fmt.Errorf("unexpected selector %x", msg.Data)
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	calls := *abi.ConvertType(args[0], new([]call3)).(*[]call3)
	c.batchSizes = append(c.batchSizes, len(calls)/3)

	results := make([]result3, len(calls))
	for i, call := range calls {
		results[i], err = c.answer(call)
		if err != nil {
			return nil, err
		}
	}
	return method.Outputs.Pack(results)
}

func (c *Chain) answer(call call3) (result3, error) {
	token, ok := c.tokens[call.Target]
	if !ok {
		return result3{Success: true}, nil
	}

	m, err := erc20ABI.MethodById(call.CallData)
	if err != nil {
		return result3{}, err
	}
	if token.Reverts[m.Name] {
		return result3{Success: false}, nil
	}

	var out []byte
	switch m.Name {
	case "symbol":
		if token.Bytes32 {
			out = common.RightPadBytes([]byte(token.Symbol), 32)
			break
		}
		out, err = m.Outputs.Pack(token.Symbol)
	case "name":
		out, err = m.Outputs.Pack(token.Name)
	case "decimals":
		out, err = m.Outputs.Pack(token.Decimals)
	}
	return result3{Success: true, ReturnData: out}, err
}
