// internal/tokenlist/drift.go
package tokenlist

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/rovshanmuradov/tokenlists/internal/export"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

// DriftError опубликованный список разошелся с исходным снимком.
// Расхождение никогда не исправляется автоматически.
type DriftError struct {
	List        string
	Reason      string
	SourceCount int
	ListCount   int
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("list %s drifted from source: %s (source %d tokens, list %d tokens)",
		e.List, e.Reason, e.SourceCount, e.ListCount)
}

// CheckDrift сравнивает снимок src/tokens с токенами опубликованного списка.
// Порядок не важен: обе стороны сортируются по адресу перед сравнением.
func CheckDrift(name string, source []types.SanitizedEntry, list *List) error {
	published := list.Tokens
	if len(source) != len(published) {
		return &DriftError{
			List:        name,
			Reason:      "token count differs",
			SourceCount: len(source),
			ListCount:   len(published),
		}
	}

	left, err := export.Marshal(sortedByAddress(source))
	if err != nil {
		return err
	}
	right, err := export.Marshal(sortedByAddress(published))
	if err != nil {
		return err
	}
	if !bytes.Equal(left, right) {
		return &DriftError{
			List:        name,
			Reason:      "token contents differ",
			SourceCount: len(source),
			ListCount:   len(published),
		}
	}
	return nil
}

func sortedByAddress(tokens []types.SanitizedEntry) []types.SanitizedEntry {
	out := make([]types.SanitizedEntry, len(tokens))
	copy(out, tokens)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Address) < strings.ToLower(out[j].Address)
	})
	return out
}
