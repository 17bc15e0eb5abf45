// internal/reconcile/reconciler.go
package reconcile

import (
	"regexp"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/blockchain/evm"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

const (
	MaxSymbolLength = 20
	MaxNameLength   = 40
)

var symbolPattern = regexp.MustCompile(`^[a-zA-Z0-9+\-%/$]+$`)

// FactSource отдает on-chain данные по адресу. Реализуется oracle.Resolution.
type FactSource interface {
	Fact(address string) (types.CanonicalFact, bool)
}

// Reconciler сверяет кандидатов с данными контрактов
type Reconciler struct {
	logger *zap.Logger
}

// New создает Reconciler
func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger.Named("reconciler")}
}

// Reconcile прогоняет кандидатов через цепочку правил в порядке входа,
// первое сработавшее правило определяет судьбу записи:
//  1. некорректный адрес или адрес, не разрешенный оракулом
//  2. дубликат по адресу ИЛИ по имени среди уже принятых записей
//  3. on-chain символ или собственное имя кандидата не проходят проверку формы
//
// Принятая запись получает symbol и decimals из контракта, а name из источника.
// Порядок выхода совпадает с порядком входа.
func (r *Reconciler) Reconcile(candidates []types.CandidateEntry, facts FactSource) Result {
	result := Result{
		Entries: make([]types.SanitizedEntry, 0, len(candidates)),
		Stats:   Stats{Input: len(candidates)},
	}

	seenAddresses := make(map[string]struct{}, len(candidates))
	seenNames := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		if !evm.IsValidAddress(candidate.Address) {
			result.drop(candidate, ReasonBadAddress)
			continue
		}
		fact, ok := facts.Fact(candidate.Address)
		if !ok {
			result.drop(candidate, ReasonBadAddress)
			continue
		}

		r.recordMismatches(&result.Stats.Mismatches, candidate, fact)

		key := candidate.Key()
		_, dupAddress := seenAddresses[key]
		_, dupName := seenNames[candidate.Name]
		if dupAddress || dupName {
			result.drop(candidate, ReasonDuplicate)
			continue
		}

		if !ValidSymbol(fact.Symbol) || !ValidName(candidate.Name) {
			result.drop(candidate, ReasonInvalidNameOrSymbol)
			continue
		}

		// формат адреса уже проверен правилом 1
		address := common.HexToAddress(candidate.Address).Hex()

		seenAddresses[key] = struct{}{}
		seenNames[candidate.Name] = struct{}{}
		result.Entries = append(result.Entries, types.SanitizedEntry{
			Name:     candidate.Name,
			Symbol:   fact.Symbol,
			Address:  address,
			ChainID:  candidate.ChainID,
			Decimals: int(fact.Decimals),
			LogoURI:  candidate.LogoURI,
		})
	}
	result.Stats.Output = len(result.Entries)

	r.logger.Info("Reconciliation finished",
		zap.Int("input", result.Stats.Input),
		zap.Int("output", result.Stats.Output),
		zap.Int("bad_address", result.Stats.BadAddress),
		zap.Int("duplicate", result.Stats.Duplicate),
		zap.Int("invalid_name_or_symbol", result.Stats.InvalidNameOrSymbol),
		zap.Int("bad_decimals", result.Stats.Mismatches.Decimals),
		zap.Int("bad_name", result.Stats.Mismatches.Name),
		zap.Int("bad_symbol", result.Stats.Mismatches.Symbol))

	return result
}

// recordMismatches только считает расхождения, на решение они не влияют
func (r *Reconciler) recordMismatches(m *Mismatches, candidate types.CandidateEntry, fact types.CanonicalFact) {
	if candidate.Decimals == 0 || candidate.Decimals != int(fact.Decimals) {
		m.Decimals++
		r.logger.Debug("Decimals mismatch",
			zap.String("address", candidate.Address),
			zap.Int("decimals", candidate.Decimals),
			zap.Uint8("real_decimals", fact.Decimals))
	}
	if candidate.Name == "" || candidate.Name != fact.Name {
		m.Name++
		r.logger.Debug("Name mismatch",
			zap.String("address", candidate.Address),
			zap.String("name", candidate.Name),
			zap.String("real_name", fact.Name))
	}
	if candidate.Symbol == "" || candidate.Symbol != fact.Symbol {
		m.Symbol++
		r.logger.Debug("Symbol mismatch",
			zap.String("address", candidate.Address),
			zap.String("symbol", candidate.Symbol),
			zap.String("real_symbol", fact.Symbol))
	}
}

// ValidSymbol проверяет символ: 1-20 символов из [A-Za-z0-9+-%/$]
func ValidSymbol(symbol string) bool {
	n := utf8.RuneCountInString(symbol)
	return n > 0 && n <= MaxSymbolLength && symbolPattern.MatchString(symbol)
}

// ValidName проверяет длину имени: 1-40 UTF-16 единиц, как у length в JS-тулинге
// списков; символ вне BMP (эмодзи) занимает две единицы.
func ValidName(name string) bool {
	n := len(utf16.Encode([]rune(name)))
	return n > 0 && n <= MaxNameLength
}
