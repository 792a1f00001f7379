// Package collection discovers the live image assets in a collection root.
package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cardpress/cardpress/internal/policy"
)

// TempPrefix marks candidate files produced by an in-flight transcode
// session. Files carrying it are never treated as live assets, and stale
// ones are swept at startup.
const TempPrefix = ".cardpress-"

// Asset is one live image file in the managed collection.
type Asset struct {
	// Path is the absolute or collection-relative file path.
	Path string
	// Size is the file size in bytes at scan time.
	Size int64
}

// Filename returns the on-disk file name.
func (a Asset) Filename() string {
	return filepath.Base(a.Path)
}

// Name returns the stable base name without extension.
func (a Asset) Name() string {
	name := a.Filename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Container returns the asset's current container, derived from its
// extension.
func (a Asset) Container() (policy.Container, bool) {
	return policy.ContainerForExt(filepath.Ext(a.Path))
}

// IsImage reports whether name carries a recognized image extension and is
// not a candidate temp file.
func IsImage(name string) bool {
	if strings.HasPrefix(name, TempPrefix) {
		return false
	}
	_, ok := policy.ContainerForExt(filepath.Ext(name))
	return ok
}

// Scan returns the live assets directly under dir, in lexical order.
// Subdirectories (backup areas included) are never descended into, and
// candidate temp files are excluded.
func Scan(dir string) ([]Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning collection %s: %w", dir, err)
	}

	var assets []Asset
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		assets = append(assets, Asset{
			Path: filepath.Join(dir, entry.Name()),
			Size: info.Size(),
		})
	}
	return assets, nil
}

// Count returns the number of live assets directly under dir.
func Count(dir string) (int, error) {
	assets, err := Scan(dir)
	if err != nil {
		return 0, err
	}
	return len(assets), nil
}
