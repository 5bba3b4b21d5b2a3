// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value. The exporter reads its access token from
// .secrets/quip-token when neither a flag nor the environment provides one.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenFile is the filename holding the Quip personal access token.
const TokenFile = "quip-token"

// Token reads the access token from dir/quip-token. A missing directory or
// file is not an error; Token returns "" so callers fall through to their
// next source.
func Token(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, TokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
