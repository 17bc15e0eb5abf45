package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/types"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// SnapshotWriter writes sanitized token snapshots, one file per source
type SnapshotWriter struct {
	dir    string
	logger *zap.Logger
}

// NewSnapshotWriter creates a writer rooted at dir (usually src/tokens)
func NewSnapshotWriter(dir string, logger *zap.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		dir:    dir,
		logger: logger.Named("export"),
	}
}

// Path returns the snapshot file path for a source
func (w *SnapshotWriter) Path(name string) string {
	return filepath.Join(w.dir, name+".json")
}

// Write replaces the whole snapshot for name with entries.
// Nothing from the previous snapshot is merged in.
func (w *SnapshotWriter) Write(name string, entries []types.SanitizedEntry) (string, error) {
	if entries == nil {
		entries = []types.SanitizedEntry{}
	}

	outputPath := w.Path(name)
	if err := WriteJSON(outputPath, entries); err != nil {
		return "", err
	}

	w.logger.Info("Token list saved",
		zap.String("file", outputPath),
		zap.Int("count", len(entries)))

	return outputPath, nil
}

// Read loads a snapshot previously written by Write
func (w *SnapshotWriter) Read(name string) ([]types.SanitizedEntry, error) {
	var entries []types.SanitizedEntry
	if err := ReadJSON(w.Path(name), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Marshal encodes v as 2-space indented JSON without HTML escaping
// and without a trailing newline
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON atomically replaces path with the JSON encoding of v.
// Data goes to a temp file in the same directory which is then renamed,
// so an interrupted write leaves the previous file intact.
func WriteJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
