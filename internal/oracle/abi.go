// internal/oracle/abi.go
package oracle

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Multicall3 развернут по одному и тому же адресу во всех поддерживаемых сетях
const DefaultMulticall3Address = "0xcA11bde05977b3631167028862bE2a173976CA11"

const multicall3JSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "address", "name": "target", "type": "address"},
          {"internalType": "bool", "name": "allowFailure", "type": "bool"},
          {"internalType": "bytes", "name": "callData", "type": "bytes"}
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
          {"internalType": "bool", "name": "success", "type": "bool"},
          {"internalType": "bytes", "name": "returnData", "type": "bytes"}
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

// Только view-методы ERC-20, которые нужны для сверки
const erc20JSON = `[
  {"constant": true, "inputs": [], "name": "name", "outputs": [{"name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {"constant": true, "inputs": [], "name": "symbol", "outputs": [{"name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {"constant": true, "inputs": [], "name": "decimals", "outputs": [{"name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

var (
	multicallABI = mustParseABI(multicall3JSON)
	erc20ABI     = mustParseABI(erc20JSON)
)

// call3 соответствует структуре Multicall3.Call3
type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// result3 соответствует структуре Multicall3.Result
type result3 struct {
	Success    bool
	ReturnData []byte
}

// Порядок чтений внутри тройки вызовов для одного адреса
var tokenReads = []string{"symbol", "name", "decimals"}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
