// internal/tokenlist/checksum.go
package tokenlist

import (
	"fmt"

	"github.com/rovshanmuradov/tokenlists/internal/blockchain/evm"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

// ChecksumEntries приводит адреса к EIP-55. Возвращает новый срез и число измененных адресов.
// Адрес, который нельзя привести к checksum, является ошибкой всего файла.
func ChecksumEntries(entries []types.SanitizedEntry) ([]types.SanitizedEntry, int, error) {
	out := make([]types.SanitizedEntry, len(entries))
	changed := 0
	for i, entry := range entries {
		address, err := evm.Checksum(entry.Address)
		if err != nil {
			return nil, 0, fmt.Errorf("token %q: %w", entry.Name, err)
		}
		if address != entry.Address {
			changed++
		}
		entry.Address = address
		out[i] = entry
	}
	return out, changed, nil
}
