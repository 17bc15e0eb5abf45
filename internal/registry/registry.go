// internal/registry/registry.go
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var embeddedRegistry []byte

var (
	ErrUnknownList   = errors.New("unknown list")
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownChain  = errors.New("unknown chain")
)

// ListMeta статические метаданные опубликованного списка
type ListMeta struct {
	Name         string   `yaml:"name"`
	Keywords     []string `yaml:"keywords"`
	LogoURI      string   `yaml:"logo_uri"`
	Sort         bool     `yaml:"sort"`
	Schema       string   `yaml:"schema"`
	SkipChecksum bool     `yaml:"skip_checksum"`
}

// Source сторонний список-кандидат
type Source struct {
	ID        string   `yaml:"-"`
	URL       string   `yaml:"url"`
	ChainID   int64    `yaml:"chain_id"`
	BadTokens []string `yaml:"bad_tokens"`
}

// IsExcluded проверяет адрес по списку исключений источника (без учета регистра)
func (s Source) IsExcluded(address string) bool {
	for _, bad := range s.BadTokens {
		if strings.EqualFold(bad, address) {
			return true
		}
	}
	return false
}

// Chain RPC узлы и адрес Multicall3 для сети
type Chain struct {
	ID         int64    `yaml:"-"`
	Name       string   `yaml:"name"`
	RPC        []string `yaml:"rpc"`
	Multicall3 string   `yaml:"multicall3"`
}

// Registry неизменяемый реестр списков, источников и сетей
type Registry struct {
	PrioritySymbol string              `yaml:"priority_symbol"`
	Chains         map[int64]Chain     `yaml:"chains"`
	Sources        map[string]Source   `yaml:"sources"`
	Lists          map[string]ListMeta `yaml:"lists"`
}

// Default возвращает встроенный реестр
func Default() (*Registry, error) {
	return Parse(embeddedRegistry)
}

// Load читает реестр из файла; пустой путь означает встроенный реестр
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML реестра и проверяет ссылки между разделами
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	for id, chain := range reg.Chains {
		chain.ID = id
		reg.Chains[id] = chain
	}
	for id, src := range reg.Sources {
		src.ID = id
		if src.URL == "" {
			return nil, fmt.Errorf("source %s: empty url", id)
		}
		if _, ok := reg.Chains[src.ChainID]; !ok {
			return nil, fmt.Errorf("source %s: %w %d", id, ErrUnknownChain, src.ChainID)
		}
		reg.Sources[id] = src
	}
	for name, meta := range reg.Lists {
		if meta.Name == "" {
			return nil, fmt.Errorf("list %s: empty name", name)
		}
	}
	return &reg, nil
}

// List возвращает метаданные списка
func (r *Registry) List(name string) (ListMeta, error) {
	meta, ok := r.Lists[name]
	if !ok {
		return ListMeta{}, fmt.Errorf("%w: %s", ErrUnknownList, name)
	}
	return meta, nil
}

// Source возвращает описание стороннего источника
func (r *Registry) Source(id string) (Source, error) {
	src, ok := r.Sources[id]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return src, nil
}

// Chain возвращает параметры сети
func (r *Registry) Chain(id int64) (Chain, error) {
	chain, ok := r.Chains[id]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %d", ErrUnknownChain, id)
	}
	return chain, nil
}

// ListNames возвращает имена всех списков в алфавитном порядке
func (r *Registry) ListNames() []string {
	names := make([]string, 0, len(r.Lists))
	for name := range r.Lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
