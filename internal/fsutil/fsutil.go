// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil provides filename sanitization and atomic file writes.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxSlugLen caps sanitized names well under common filesystem limits,
// leaving room for extensions and identifier suffixes.
const maxSlugLen = 150

var (
	slugWhitespace = regexp.MustCompile(`[\t\r\n]+`)
	slugUnsafe     = regexp.MustCompile(`[^A-Za-z0-9._ \-()\[\]]+`)
)

// Slugify converts a document or folder title into a filesystem-safe name.
// Path separators become hyphens, control whitespace collapses to single
// spaces, and anything outside a conservative ASCII set is dropped. An
// empty result degrades to "untitled".
func Slugify(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "/", "-")
	name = slugWhitespace.ReplaceAllString(name, " ")
	safe := strings.TrimSpace(slugUnsafe.ReplaceAllString(name, ""))
	if len(safe) > maxSlugLen {
		safe = safe[:maxSlugLen]
	}
	safe = strings.TrimRight(safe, " .")
	if safe == "" {
		return "untitled"
	}
	return safe
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory renamed into place, so a crash mid-write never leaves a partial
// file visible at path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
