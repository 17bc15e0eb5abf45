// internal/tokenlist/store.go
package tokenlist

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/export"
	"github.com/rovshanmuradov/tokenlists/internal/registry"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

// Store читает снимки из src/tokens и пишет опубликованные списки в lists
type Store struct {
	snapshots *export.SnapshotWriter
	listsDir  string
	logger    *zap.Logger
}

// NewStore создает хранилище списков
func NewStore(srcDir, listsDir string, logger *zap.Logger) *Store {
	return &Store{
		snapshots: export.NewSnapshotWriter(srcDir, logger),
		listsDir:  listsDir,
		logger:    logger.Named("store"),
	}
}

// ListPath путь опубликованного списка
func (s *Store) ListPath(name string) string {
	return filepath.Join(s.listsDir, name+".json")
}

// ReadSource читает снимок src/tokens/<name>.json
func (s *Store) ReadSource(name string) ([]types.SanitizedEntry, error) {
	return s.snapshots.Read(name)
}

// ReadList читает опубликованный список lists/<name>.json
func (s *Store) ReadList(name string) (*List, error) {
	var list List
	if err := export.ReadJSON(s.ListPath(name), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// PreviousVersion версия ранее опубликованного списка.
// Если список еще не публиковался, возвращается нулевая версия.
func (s *Store) PreviousVersion(name string) (Version, error) {
	list, err := s.ReadList(name)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("No published list, starting from zero version", zap.String("list", name))
		return Version{}, nil
	}
	if err != nil {
		return Version{}, err
	}
	return list.Version, nil
}

// WriteList целиком заменяет lists/<name>.json
func (s *Store) WriteList(name string, list *List) (string, error) {
	path := s.ListPath(name)
	if err := export.WriteJSON(path, list); err != nil {
		return "", err
	}
	s.logger.Info("List written",
		zap.String("file", path),
		zap.String("version", list.Version.String()),
		zap.Int("tokens", len(list.Tokens)))
	return path, nil
}

// Checksum переписывает снимок src/tokens/<name>.json с адресами EIP-55.
// Для списков с skip_checksum ничего не делает; если адреса уже в порядке, файл не трогается.
func (s *Store) Checksum(name string, meta registry.ListMeta) (int, error) {
	if meta.SkipChecksum {
		s.logger.Info("Checksum skipped", zap.String("list", name))
		return 0, nil
	}

	entries, err := s.ReadSource(name)
	if err != nil {
		return 0, err
	}
	checksummed, changed, err := ChecksumEntries(entries)
	if err != nil {
		return 0, fmt.Errorf("checksum %s: %w", name, err)
	}
	if changed == 0 {
		s.logger.Info("Addresses already checksummed", zap.String("list", name))
		return 0, nil
	}
	if _, err := s.snapshots.Write(name, checksummed); err != nil {
		return 0, err
	}
	return changed, nil
}
