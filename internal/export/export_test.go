package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/types"
)

func generateTestEntries() []types.SanitizedEntry {
	return []types.SanitizedEntry{
		{
			Name:     "PancakeSwap Token",
			Symbol:   "CAKE",
			Address:  "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82",
			ChainID:  56,
			Decimals: 18,
			LogoURI:  "https://tokens.pancakeswap.finance/images/0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82.png",
		},
		{
			Name:     "A&B <Token>",
			Symbol:   "A&B",
			Address:  "0x55d398326f99059fF775485246999027B3197955",
			ChainID:  56,
			Decimals: 18,
			LogoURI:  "",
		},
	}
}

func TestSnapshotWriteFormat(t *testing.T) {
	writer := NewSnapshotWriter(t.TempDir(), zap.NewNop())

	outputPath, err := writer.Write("coingecko", generateTestEntries()[:1])
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	expected := `[
  {
    "name": "PancakeSwap Token",
    "symbol": "CAKE",
    "address": "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82",
    "chainId": 56,
    "decimals": 18,
    "logoURI": "https://tokens.pancakeswap.finance/images/0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82.png"
  }
]`
	assert.Equal(t, expected, string(content))
}

func TestSnapshotWriteDoesNotEscapeHTML(t *testing.T) {
	writer := NewSnapshotWriter(t.TempDir(), zap.NewNop())

	outputPath, err := writer.Write("cmc", generateTestEntries())
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"A&B <Token>"`)
}

func TestSnapshotWriteReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	writer := NewSnapshotWriter(dir, zap.NewNop())

	_, err := writer.Write("cmc", generateTestEntries())
	require.NoError(t, err)
	_, err = writer.Write("cmc", generateTestEntries()[1:])
	require.NoError(t, err)

	entries, err := writer.Read("cmc")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A&B", entries[0].Symbol)

	// временные файлы не остаются в каталоге
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSnapshotWriteIsByteStable(t *testing.T) {
	writer := NewSnapshotWriter(t.TempDir(), zap.NewNop())

	first, err := writer.Write("a", generateTestEntries())
	require.NoError(t, err)
	firstContent, err := os.ReadFile(first)
	require.NoError(t, err)

	second, err := writer.Write("a", generateTestEntries())
	require.NoError(t, err)
	secondContent, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Equal(t, firstContent, secondContent)
}

func TestSnapshotWriteEmpty(t *testing.T) {
	writer := NewSnapshotWriter(filepath.Join(t.TempDir(), "nested", "dir"), zap.NewNop())

	outputPath, err := writer.Write("empty", nil)
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(content))
}

func TestReadJSONErrors(t *testing.T) {
	dir := t.TempDir()
	var v []types.SanitizedEntry

	assert.Error(t, ReadJSON(filepath.Join(dir, "missing.json"), &v))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("[{"), 0o644))
	assert.Error(t, ReadJSON(broken, &v))
}
