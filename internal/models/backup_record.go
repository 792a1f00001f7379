package models

// BackupRecord indexes one filesystem backup for browsing and auditing.
// The backup file itself is the authoritative record; rows here are written
// best-effort after the first-write-wins copy succeeds.
type BackupRecord struct {
	BaseModel
	// Asset is the backed-up file name (with extension).
	Asset string `gorm:"not null;uniqueIndex:idx_backup_asset_area" json:"asset"`
	// Area is the backup area name, e.g. "backup_original".
	Area string `gorm:"not null;uniqueIndex:idx_backup_asset_area" json:"area"`
	// SourcePath is the live asset path the backup was taken from.
	SourcePath string `json:"source_path"`
	// SizeBytes is the size of the original bytes at backup time.
	SizeBytes int64 `json:"size_bytes"`
}

// TableName returns the database table name.
func (BackupRecord) TableName() string {
	return "backup_records"
}
