// internal/blockchain/evm/address.go
package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress проверяет формат адреса: префикс 0x (только в нижнем регистре), 40 hex-символов.
// Адрес в смешанном регистре должен иметь корректную контрольную сумму EIP-55,
// адреса целиком в нижнем или верхнем регистре принимаются как есть.
func IsValidAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	if !common.IsHexAddress(address) {
		return false
	}

	body := address[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(address).Hex() == address
}

// Checksum возвращает адрес в кодировке EIP-55
func Checksum(address string) (string, error) {
	if !IsValidAddress(address) {
		return "", fmt.Errorf("invalid address %q", address)
	}
	return common.HexToAddress(address).Hex(), nil
}
