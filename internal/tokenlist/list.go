// internal/tokenlist/list.go
package tokenlist

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/registry"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

// TimestampLayout ISO-8601 с миллисекундами в UTC
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// List распространяемый документ списка токенов
type List struct {
	Name      string                 `json:"name"`
	Timestamp string                 `json:"timestamp"`
	Version   Version                `json:"version"`
	LogoURI   string                 `json:"logoURI"`
	Keywords  []string               `json:"keywords"`
	Schema    string                 `json:"schema,omitempty"`
	Tokens    []types.SanitizedEntry `json:"tokens"`
}

// Assembler собирает документ списка из сохраненного снимка
type Assembler struct {
	prioritySymbol string
	now            func() time.Time
	logger         *zap.Logger
}

// Option настройка Assembler
type Option func(*Assembler)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler создает сборщик; prioritySymbol ставится первым внутри сети при сортировке
func NewAssembler(prioritySymbol string, logger *zap.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		prioritySymbol: prioritySymbol,
		now:            time.Now,
		logger:         logger.Named("assembler"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble повышает версию, проставляет время и при meta.Sort сортирует токены.
// Входной срез не изменяется.
func (a *Assembler) Assemble(meta registry.ListMeta, prev Version, kind BumpKind, tokens []types.SanitizedEntry) (*List, error) {
	version, err := prev.Bump(kind)
	if err != nil {
		return nil, err
	}

	out := make([]types.SanitizedEntry, len(tokens))
	copy(out, tokens)
	if meta.Sort {
		SortTokens(out, a.prioritySymbol)
	}

	keywords := meta.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	list := &List{
		Name:      meta.Name,
		Timestamp: a.now().UTC().Format(TimestampLayout),
		Version:   version,
		LogoURI:   meta.LogoURI,
		Keywords:  keywords,
		Schema:    meta.Schema,
		Tokens:    out,
	}

	a.logger.Info("List assembled",
		zap.String("list", meta.Name),
		zap.String("version", version.String()),
		zap.String("bump", string(kind)),
		zap.Int("tokens", len(out)),
		zap.Bool("sorted", meta.Sort))

	return list, nil
}

// SortTokens стабильно сортирует по chainId, затем priority символ первым,
// затем по символу без учета регистра
func SortTokens(tokens []types.SanitizedEntry, prioritySymbol string) {
	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		aPriority := prioritySymbol != "" && a.Symbol == prioritySymbol
		bPriority := prioritySymbol != "" && b.Symbol == prioritySymbol
		if aPriority != bPriority {
			return aPriority
		}
		return strings.ToLower(a.Symbol) < strings.ToLower(b.Symbol)
	})
}
