// internal/tokenlist/validate.go
package tokenlist

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/tokenlists/internal/blockchain/evm"
	"github.com/rovshanmuradov/tokenlists/internal/reconcile"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

// SchemaAptos списки Aptos используют адреса вида 0x1::coin::Coin, EVM-проверки к ним не применяются
const SchemaAptos = "aptos"

const maxDecimals = 255

// ErrInvalidList собранный документ не прошел проверку
var ErrInvalidList = errors.New("invalid token list")

// Validate проверяет собранный документ перед публикацией.
// Все найденные проблемы возвращаются одной ошибкой.
func Validate(list *List) error {
	var errs []error

	if list.Name == "" {
		errs = append(errs, errors.New("empty list name"))
	}
	if list.Timestamp == "" {
		errs = append(errs, errors.New("empty timestamp"))
	}
	if list.Version.Major < 0 || list.Version.Minor < 0 || list.Version.Patch < 0 {
		errs = append(errs, fmt.Errorf("negative version %s", list.Version))
	}

	seen := make(map[string]int, len(list.Tokens))
	for i, token := range list.Tokens {
		key := fmt.Sprintf("%d:%s", token.ChainID, types.AddressKey(token.Address))
		if first, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("token %d: duplicate address %s (first at %d)", i, token.Address, first))
		} else {
			seen[key] = i
		}

		if list.Schema != SchemaAptos && !evm.IsValidAddress(token.Address) {
			errs = append(errs, fmt.Errorf("token %d: invalid address %q", i, token.Address))
		}
		if !reconcile.ValidSymbol(token.Symbol) {
			errs = append(errs, fmt.Errorf("token %d: invalid symbol %q", i, token.Symbol))
		}
		if !reconcile.ValidName(token.Name) {
			errs = append(errs, fmt.Errorf("token %d: invalid name %q", i, token.Name))
		}
		if token.Decimals < 0 || token.Decimals > maxDecimals {
			errs = append(errs, fmt.Errorf("token %d: decimals %d out of range", i, token.Decimals))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %s: %w", ErrInvalidList, list.Name, errors.Join(errs...))
	}
	return nil
}
