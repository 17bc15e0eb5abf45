// internal/reconcile/result.go
package reconcile

import "github.com/rovshanmuradov/tokenlists/internal/types"

// DropReason категория отброшенной записи
type DropReason string

const (
	ReasonBadAddress          DropReason = "bad_address"
	ReasonDuplicate           DropReason = "duplicate"
	ReasonInvalidNameOrSymbol DropReason = "invalid_name_or_symbol"
)

// Mismatches расхождения между источником и контрактом (только диагностика)
type Mismatches struct {
	Decimals int `json:"decimals"`
	Name     int `json:"name"`
	Symbol   int `json:"symbol"`
}

// Stats счетчики одного прогона.
// Инвариант: Output + BadAddress + Duplicate + InvalidNameOrSymbol == Input.
type Stats struct {
	Input               int        `json:"input"`
	Output              int        `json:"output"`
	BadAddress          int        `json:"bad_address"`
	Duplicate           int        `json:"duplicate"`
	InvalidNameOrSymbol int        `json:"invalid_name_or_symbol"`
	Mismatches          Mismatches `json:"mismatches"`
}

// Dropped общее число отброшенных записей
func (s Stats) Dropped() int {
	return s.BadAddress + s.Duplicate + s.InvalidNameOrSymbol
}

// Balanced проверяет, что каждая входная запись учтена ровно один раз
func (s Stats) Balanced() bool {
	return s.Output+s.Dropped() == s.Input
}

// Drop отброшенный кандидат и причина
type Drop struct {
	Address string
	Name    string
	Reason  DropReason
}

// Result итог сверки
type Result struct {
	Entries []types.SanitizedEntry
	Dropped []Drop
	Stats   Stats
}

func (r *Result) drop(candidate types.CandidateEntry, reason DropReason) {
	r.Dropped = append(r.Dropped, Drop{
		Address: candidate.Address,
		Name:    candidate.Name,
		Reason:  reason,
	})
	switch reason {
	case ReasonBadAddress:
		r.Stats.BadAddress++
	case ReasonDuplicate:
		r.Stats.Duplicate++
	case ReasonInvalidNameOrSymbol:
		r.Stats.InvalidNameOrSymbol++
	}
}
