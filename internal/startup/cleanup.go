// Package startup provides utilities for application startup tasks.
package startup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cardpress/cardpress/internal/collection"
)

// DefaultCleanupAge is the default maximum age for stale candidate files.
const DefaultCleanupAge = 1 * time.Hour

// CleanupStaleCandidates removes candidate files left behind by a crashed or
// interrupted run. It looks for files matching the collection temp prefix in
// the given directory that are older than maxAge.
//
// Returns the number of files removed and any error encountered.
func CleanupStaleCandidates(logger *slog.Logger, dir string, maxAge time.Duration) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("directory does not exist, skipping cleanup",
			"path", dir,
		)
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("failed to read directory for cleanup",
			"path", dir,
			"error", err,
		)
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(entry.Name(), collection.TempPrefix) {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			logger.Warn("failed to get file info",
				"path", path,
				"error", err,
			)
			continue
		}

		if info.ModTime().After(cutoff) {
			logger.Debug("preserving recent candidate file",
				"path", path,
				"age", time.Since(info.ModTime()).Round(time.Second),
			)
			continue
		}

		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove stale candidate file",
				"path", path,
				"error", err,
			)
			continue
		}

		logger.Info("removed stale candidate file",
			"path", path,
			"age", time.Since(info.ModTime()).Round(time.Second),
		)
		removed++
	}

	return removed, nil
}
