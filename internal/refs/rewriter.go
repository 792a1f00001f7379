// Package refs rewrites asset references in markup documents after
// container conversions rename files.
package refs

import (
	"fmt"
	"os"
	"regexp"
)

// Apply rewrites every case-insensitive occurrence of an old asset filename
// with its new filename in the document at docPath. It returns the number of
// distinct renames that matched at least once. The document is written back
// only when something changed.
func Apply(docPath string, renames map[string]string) (int, error) {
	if len(renames) == 0 {
		return 0, nil
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		return 0, fmt.Errorf("reading document: %w", err)
	}

	updated := 0
	for oldName, newName := range renames {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(oldName))
		if err != nil {
			return updated, fmt.Errorf("building pattern for %s: %w", oldName, err)
		}
		if !re.Match(data) {
			continue
		}
		data = re.ReplaceAllLiteral(data, []byte(newName))
		updated++
	}

	if updated == 0 {
		return 0, nil
	}

	if err := os.WriteFile(docPath, data, 0o644); err != nil {
		return updated, fmt.Errorf("writing document: %w", err)
	}
	return updated, nil
}
