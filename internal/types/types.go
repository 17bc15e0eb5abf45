// internal/types/types.go
package types

import "strings"

// CandidateEntry запись из стороннего списка токенов, как она пришла из источника.
// Ни одному полю не доверяем до сверки с контрактом.
type CandidateEntry struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	ChainID  int64  `json:"chainId"`
	LogoURI  string `json:"logoURI"`
}

// Key возвращает ключ для сопоставления с on-chain фактами (адрес без учета регистра)
func (c CandidateEntry) Key() string {
	return AddressKey(c.Address)
}

// CanonicalFact данные токена, прочитанные напрямую из контракта
type CanonicalFact struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// SanitizedEntry итоговая запись, прошедшая проверку.
// Порядок полей совпадает с порядком ключей в опубликованных файлах.
type SanitizedEntry struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	ChainID  int64  `json:"chainId"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI"`
}

// AddressKey нормализует адрес для использования в качестве ключа map
func AddressKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
