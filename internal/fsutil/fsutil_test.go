// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Meeting Notes", "Meeting Notes"},
		{"slash becomes hyphen", "Q3/Q4 Planning", "Q3-Q4 Planning"},
		{"control whitespace collapsed", "a\tb\nc", "a b c"},
		{"unsafe dropped", "Budget: 2026 <final>", "Budget 2026 final"},
		{"parens and brackets kept", "Spec (v2) [draft]", "Spec (v2) [draft]"},
		{"trailing dots stripped", "notes...", "notes"},
		{"empty", "", "untitled"},
		{"only unsafe", "???", "untitled"},
		{"surrounding space trimmed", "  plan  ", "plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("x", 400)
	got := Slugify(long)
	if len(got) != maxSlugLen {
		t.Errorf("Slugify(long) length = %d, want %d", len(got), maxSlugLen)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	// No temp files may survive.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "doc.md" {
			t.Errorf("leftover file %s", e.Name())
		}
	}
}
