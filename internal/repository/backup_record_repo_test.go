package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpress/cardpress/internal/config"
	"github.com/cardpress/cardpress/internal/database"
	"github.com/cardpress/cardpress/internal/models"
)

func testRepo(t *testing.T) BackupRecordRepository {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{LogLevel: "silent"}, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBackupRecordRepository(db.DB)
}

func TestBackupRecordRepo_CreateAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rec := &models.BackupRecord{
		Asset:      "fool.png",
		Area:       "backup_original",
		SourcePath: "cards/fool.png",
		SizeBytes:  1024,
	}
	require.NoError(t, repo.Create(ctx, rec))
	assert.False(t, rec.ID.IsZero())

	got, err := repo.GetByAssetArea(ctx, "fool.png", "backup_original")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, int64(1024), got.SizeBytes)
}

func TestBackupRecordRepo_GetMissing(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.GetByAssetArea(context.Background(), "nope.png", "backup_original")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBackupRecordRepo_DuplicateAssetArea(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.BackupRecord{Asset: "fool.png", Area: "backup_original"}))
	err := repo.Create(ctx, &models.BackupRecord{Asset: "fool.png", Area: "backup_original"})
	assert.Error(t, err)

	// Same asset in a different area is allowed.
	require.NoError(t, repo.Create(ctx, &models.BackupRecord{Asset: "fool.png", Area: "backup_webp_original"}))
}

func TestBackupRecordRepo_List(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.BackupRecord{Asset: "fool.png", Area: "backup_original"}))
	require.NoError(t, repo.Create(ctx, &models.BackupRecord{Asset: "magician.png", Area: "backup_original"}))
	require.NoError(t, repo.Create(ctx, &models.BackupRecord{Asset: "fool.png", Area: "backup_jpg"}))

	byArea, err := repo.ListByArea(ctx, "backup_original")
	require.NoError(t, err)
	assert.Len(t, byArea, 2)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "backup_jpg", all[0].Area)
}
