package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpress/cardpress/internal/pipeline/core"
	"github.com/cardpress/cardpress/internal/policy"
)

func touch(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "fool.png"), 100)
	touch(t, filepath.Join(dir, "magician.jpg"), 200)
	touch(t, filepath.Join(dir, "notes.txt"), 10)

	state := core.NewState(dir, "", policy.ModeConservative)
	result, err := NewStage(0, nil).Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RecordsProcessed)
	require.Len(t, state.Assets, 2)
}

func TestExecute_MaxAssetSize(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "small.png"), 100)
	touch(t, filepath.Join(dir, "huge.png"), 5000)

	state := core.NewState(dir, "", policy.ModeConservative)
	result, err := NewStage(1024, nil).Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsProcessed)
	require.Len(t, state.Assets, 1)
	assert.Equal(t, "small.png", state.Assets[0].Filename())
}

func TestExecute_EmptyCollection(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"), 10)

	state := core.NewState(dir, "", policy.ModeConservative)
	_, err := NewStage(0, nil).Execute(context.Background(), state)
	assert.ErrorIs(t, err, core.ErrNoAssets)
}

func TestExecute_MissingDir(t *testing.T) {
	state := core.NewState(filepath.Join(t.TempDir(), "nope"), "", policy.ModeConservative)
	_, err := NewStage(0, nil).Execute(context.Background(), state)
	assert.Error(t, err)
}
