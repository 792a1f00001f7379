package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpress/cardpress/internal/models"
)

type fakeIndex struct {
	records []*models.BackupRecord
	err     error
}

func (f *fakeIndex) Record(_ context.Context, rec *models.BackupRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestEnsure_CreatesBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fool.png")
	writeFile(t, src, "original bytes")

	idx := &fakeIndex{}
	ledger, err := NewLedger(filepath.Join(dir, "backup_original"), "backup_original", idx, nil)
	require.NoError(t, err)

	created, err := ledger.Ensure(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "original bytes", readFile(t, filepath.Join(ledger.Dir(), "fool.png")))

	require.Len(t, idx.records, 1)
	assert.Equal(t, "fool.png", idx.records[0].Asset)
	assert.Equal(t, "backup_original", idx.records[0].Area)
	assert.Equal(t, int64(len("original bytes")), idx.records[0].SizeBytes)
}

func TestEnsure_FirstWriteWins(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fool.png")
	writeFile(t, src, "first")

	ledger, err := NewLedger(filepath.Join(dir, "backup_original"), "backup_original", nil, nil)
	require.NoError(t, err)

	created, err := ledger.Ensure(context.Background(), src)
	require.NoError(t, err)
	require.True(t, created)

	// Mutate the source; the existing backup must be left alone.
	writeFile(t, src, "second, longer content")
	created, err = ledger.Ensure(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "first", readFile(t, filepath.Join(ledger.Dir(), "fool.png")))
}

func TestEnsure_ConvertedAssetKeepsOriginalBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fool.png")
	writeFile(t, src, "original png bytes")

	ledger, err := NewLedger(filepath.Join(dir, "backup_original"), "backup_original", nil, nil)
	require.NoError(t, err)

	created, err := ledger.Ensure(context.Background(), src)
	require.NoError(t, err)
	require.True(t, created)

	// A conversion renamed the live asset; a later run must not back up
	// the degraded jpg next to the original png.
	converted := filepath.Join(dir, "fool.jpg")
	writeFile(t, converted, "degraded jpg bytes")
	created, err = ledger.Ensure(context.Background(), converted)
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := os.ReadDir(ledger.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fool.png", entries[0].Name())
	assert.Equal(t, "original png bytes", readFile(t, filepath.Join(ledger.Dir(), "fool.png")))
}

func TestEnsure_MissingSource(t *testing.T) {
	dir := t.TempDir()
	ledger, err := NewLedger(filepath.Join(dir, "backup_original"), "backup_original", nil, nil)
	require.NoError(t, err)

	_, err = ledger.Ensure(context.Background(), filepath.Join(dir, "nope.png"))
	require.Error(t, err)

	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "nope.png", werr.Asset)

	// No partial backup left behind.
	_, statErr := os.Stat(filepath.Join(ledger.Dir(), "nope.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsure_IndexFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fool.png")
	writeFile(t, src, "bytes")

	idx := &fakeIndex{err: assert.AnError}
	ledger, err := NewLedger(filepath.Join(dir, "backup_original"), "backup_original", idx, nil)
	require.NoError(t, err)

	created, err := ledger.Ensure(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestRestore(t *testing.T) {
	collectionDir := t.TempDir()
	ledger, err := NewLedger(filepath.Join(collectionDir, "backup_original"), "backup_original", nil, nil)
	require.NoError(t, err)

	// fool was converted to jpg after backup; magician was recompressed in place.
	writeFile(t, filepath.Join(ledger.Dir(), "fool.png"), "fool original")
	writeFile(t, filepath.Join(ledger.Dir(), "magician.jpg"), "magician original")
	writeFile(t, filepath.Join(collectionDir, "fool.jpg"), "converted")
	writeFile(t, filepath.Join(collectionDir, "magician.jpg"), "recompressed")

	restored, err := ledger.Restore(collectionDir)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	assert.Equal(t, "fool original", readFile(t, filepath.Join(collectionDir, "fool.png")))
	assert.Equal(t, "magician original", readFile(t, filepath.Join(collectionDir, "magician.jpg")))

	_, statErr := os.Stat(filepath.Join(collectionDir, "fool.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRestore_EmptyArea(t *testing.T) {
	collectionDir := t.TempDir()
	ledger, err := NewLedger(filepath.Join(collectionDir, "backup_original"), "backup_original", nil, nil)
	require.NoError(t, err)

	restored, err := ledger.Restore(collectionDir)
	require.NoError(t, err)
	assert.Zero(t, restored)
}
