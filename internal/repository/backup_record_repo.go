// Package repository provides data access for the backup-ledger index.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cardpress/cardpress/internal/models"
)

// BackupRecordRepository stores and queries backup metadata rows.
type BackupRecordRepository interface {
	// Create inserts a new record. The (asset, area) pair is unique.
	Create(ctx context.Context, rec *models.BackupRecord) error

	// GetByAssetArea returns the record for an asset in an area, or nil.
	GetByAssetArea(ctx context.Context, asset, area string) (*models.BackupRecord, error)

	// ListByArea returns all records for one backup area, oldest first.
	ListByArea(ctx context.Context, area string) ([]*models.BackupRecord, error)

	// ListAll returns all records, grouped by area then oldest first.
	ListAll(ctx context.Context) ([]*models.BackupRecord, error)
}

// backupRecordRepo implements BackupRecordRepository using GORM.
type backupRecordRepo struct {
	db *gorm.DB
}

// NewBackupRecordRepository creates a new BackupRecordRepository.
func NewBackupRecordRepository(db *gorm.DB) BackupRecordRepository {
	return &backupRecordRepo{db: db}
}

func (r *backupRecordRepo) Create(ctx context.Context, rec *models.BackupRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("creating backup record: %w", err)
	}
	return nil
}

func (r *backupRecordRepo) GetByAssetArea(ctx context.Context, asset, area string) (*models.BackupRecord, error) {
	var rec models.BackupRecord
	err := r.db.WithContext(ctx).Where("asset = ? AND area = ?", asset, area).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting backup record: %w", err)
	}
	return &rec, nil
}

func (r *backupRecordRepo) ListByArea(ctx context.Context, area string) ([]*models.BackupRecord, error) {
	var recs []*models.BackupRecord
	if err := r.db.WithContext(ctx).Where("area = ?", area).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing backup records: %w", err)
	}
	return recs, nil
}

func (r *backupRecordRepo) ListAll(ctx context.Context) ([]*models.BackupRecord, error) {
	var recs []*models.BackupRecord
	if err := r.db.WithContext(ctx).Order("area ASC, created_at ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing backup records: %w", err)
	}
	return recs, nil
}
