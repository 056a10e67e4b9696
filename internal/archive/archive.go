// Package archive moves documents aside into a timestamped archive directory.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the archive directory created next to an archived file
const DirName = "archive"

// ArchiveFile moves path into the archive directory next to it, as
// <name>-<timestamp><ext>, and returns the new location.
func ArchiveFile(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a regular file: %s", path)
	}

	archiveDir := filepath.Join(filepath.Dir(path), DirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := uniquePath(archiveDir, filepath.Base(path), time.Now())
	if err := os.Rename(path, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return archivePath, nil
}

func uniquePath(dir, base string, now time.Time) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := filepath.Join(dir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405"), ext))
	if _, err := os.Stat(candidate); err != nil {
		return candidate
	}

	// Same second: fall back to microseconds, then a counter
	stamp := now.Format("20060102-150405.000000")
	candidate = filepath.Join(dir, fmt.Sprintf("%s-%s%s", stem, stamp, ext))
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%s-%d%s", stem, stamp, i, ext))
	}
}
