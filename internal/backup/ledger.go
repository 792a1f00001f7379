// Package backup preserves original asset bytes before any mutation.
//
// Backups are first-write-wins: the copy taken before the first mutation of
// an asset is the one that survives, no matter how many later runs touch the
// same file. The filesystem copy is authoritative; the sqlite index only
// makes backups browsable.
package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cardpress/cardpress/internal/collection"
	"github.com/cardpress/cardpress/internal/models"
)

// WriteError reports a failed backup write for one asset.
type WriteError struct {
	Asset string
	Area  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("backing up %s to %s: %v", e.Asset, e.Area, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Index records backup metadata after a successful filesystem copy.
// Implementations are best-effort; failures are logged, never fatal.
type Index interface {
	Record(ctx context.Context, rec *models.BackupRecord) error
}

// Ledger manages one backup area directory.
type Ledger struct {
	dir    string
	area   string
	index  Index
	logger *slog.Logger
}

// NewLedger creates the backup area directory and returns a ledger for it.
// index may be nil when the sqlite index is unavailable.
func NewLedger(dir, area string, index Index, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup area %s: %w", area, err)
	}
	return &Ledger{dir: dir, area: area, index: index, logger: logger}, nil
}

// Dir returns the backup area directory path.
func (l *Ledger) Dir() string {
	return l.dir
}

// Ensure copies srcPath into the backup area unless the asset already has a
// backup there. It reports whether a new backup was created. The backup key
// is the asset's base name without extension: a container conversion renames
// the live file but must not accrete a second, already-degraded backup on
// later runs. An existing backup is never overwritten.
func (l *Ledger) Ensure(ctx context.Context, srcPath string) (bool, error) {
	name := filepath.Base(srcPath)

	backed, err := l.hasBackup(assetKey(name))
	if err != nil {
		return false, &WriteError{Asset: name, Area: l.area, Err: err}
	}
	if backed {
		return false, nil
	}

	dstPath := filepath.Join(l.dir, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, &WriteError{Asset: name, Area: l.area, Err: err}
	}

	src, err := os.Open(srcPath)
	if err != nil {
		dst.Close()
		os.Remove(dstPath)
		return false, &WriteError{Asset: name, Area: l.area, Err: err}
	}
	defer src.Close()

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A partial backup is worse than none; the next run retries.
		os.Remove(dstPath)
		return false, &WriteError{Asset: name, Area: l.area, Err: err}
	}

	l.record(ctx, name, srcPath, written)
	return true, nil
}

// assetKey strips the container extension from a filename; conversions
// change the extension but never the base name.
func assetKey(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// hasBackup reports whether the area already holds a backup for the asset
// under any recognized image extension.
func (l *Ledger) hasBackup(key string) (bool, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !collection.IsImage(entry.Name()) {
			continue
		}
		if assetKey(entry.Name()) == key {
			return true, nil
		}
	}
	return false, nil
}

// record writes the index row for a fresh backup. Index failures do not
// invalidate the backup itself.
func (l *Ledger) record(ctx context.Context, name, srcPath string, size int64) {
	if l.index == nil {
		return
	}
	rec := &models.BackupRecord{
		Asset:      name,
		Area:       l.area,
		SourcePath: srcPath,
		SizeBytes:  size,
	}
	if err := l.index.Record(ctx, rec); err != nil {
		l.logger.Warn("failed to index backup",
			slog.String("asset", name),
			slog.String("area", l.area),
			slog.String("error", err.Error()))
	}
}

// Restore copies every backup in the area back into the collection directory,
// overwriting current assets. When an asset was converted to another container
// after backup, the converted sibling is removed so the restored original is
// the only copy left.
func (l *Ledger) Restore(collectionDir string) (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, fmt.Errorf("reading backup area %s: %w", l.area, err)
	}

	restored := 0
	for _, entry := range entries {
		if entry.IsDir() || !collection.IsImage(entry.Name()) {
			continue
		}
		name := entry.Name()
		if err := copyFile(filepath.Join(l.dir, name), filepath.Join(collectionDir, name)); err != nil {
			return restored, &WriteError{Asset: name, Area: l.area, Err: err}
		}
		l.removeConvertedSiblings(collectionDir, name)
		restored++
		l.logger.Info("restored asset",
			slog.String("asset", name),
			slog.String("area", l.area))
	}
	return restored, nil
}

// removeConvertedSiblings deletes collection files that share the restored
// asset's base name but carry a different image extension.
func (l *Ledger) removeConvertedSiblings(collectionDir, name string) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for _, sibling := range []string{".png", ".jpg", ".jpeg", ".webp"} {
		if strings.EqualFold(sibling, ext) {
			continue
		}
		path := filepath.Join(collectionDir, base+sibling)
		if err := os.Remove(path); err == nil {
			l.logger.Info("removed converted sibling", slog.String("path", path))
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
