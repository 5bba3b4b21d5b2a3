// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest tracks per-document export state between runs, backed by
// a JSON file under the export root.
package manifest

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/quip-export/internal/fsutil"
)

// FileName is the manifest's name inside the export root.
const FileName = "manifest.json"

// Entry records what was last written to disk for one thread. UpdatedKey is
// the remote updated_usec rendered in decimal, or a sha256 content hash for
// threads the service reports no timestamp for. Invariant: a present entry
// means content matching UpdatedKey was fully written at Path; a Path that
// differs from the thread's current placement signals a move.
type Entry struct {
	Title      string `json:"title"`
	Path       string `json:"filename"`
	UpdatedKey string `json:"updated_key"`
	ExportedAt int64  `json:"last_exported"`
	FolderPath string `json:"folder_path,omitempty"`
}

// Reason classifies why a document needs export.
type Reason string

const (
	ReasonNew     Reason = "new"
	ReasonUpdated Reason = "updated"
	ReasonMoved   Reason = "moved"
)

// Store is the in-memory view of one manifest file. All access is
// mutex-serialized so the worker pool can record entries concurrently.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	seen    map[string]bool
}

// LoadOrCreate reads the manifest at path. An absent or unparsable file
// yields an empty store: a damaged manifest degrades to a full re-export,
// never a fatal error.
func LoadOrCreate(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		seen:    make(map[string]bool),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return s
	}
	s.entries = entries
	return s
}

// NeedsExport reports whether the document must be (re)written, and why.
// A document needs export when it has no entry, its stored key is outdated
// against the current one, or its stored path differs from path.
func (s *Store) NeedsExport(id, key, path string) (bool, Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return true, ReasonNew
	}
	if keyOutdated(e.UpdatedKey, key) {
		return true, ReasonUpdated
	}
	if e.Path != path {
		return true, ReasonMoved
	}
	return false, ""
}

// keyOutdated compares change keys. When both parse as numeric timestamps
// the stored one must be strictly older to force export; the remote clock
// is monotonically non-decreasing per document, so an equal or newer stored
// value means nothing changed. Hash keys force export on any difference.
func keyOutdated(stored, current string) bool {
	if stored == current {
		return false
	}
	su, serr := strconv.ParseInt(stored, 10, 64)
	cu, cerr := strconv.ParseInt(current, 10, 64)
	if serr == nil && cerr == nil {
		return su < cu
	}
	return true
}

// MarkSeen notes that id is reachable under this run's requested scope,
// making its entry survive pruning.
func (s *Store) MarkSeen(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[id] = true
}

// PathFor returns the recorded output path for id, or "" when unknown.
func (s *Store) PathFor(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id].Path
}

// Entry returns the recorded entry for id.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Record upserts the entry for id and marks it seen. Recording identical
// values twice is observably a no-op.
func (s *Store) Record(id string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[id] = true
	if cur, ok := s.entries[id]; ok && cur == e {
		return
	}
	s.entries[id] = e
}

// NewEntry builds an Entry stamped with the current time.
func NewEntry(title, path, updatedKey, folderPath string) Entry {
	return Entry{
		Title:      title,
		Path:       path,
		UpdatedKey: updatedKey,
		ExportedAt: time.Now().Unix(),
		FolderPath: folderPath,
	}
}

// Flush atomically persists the mapping: the JSON is written to a temp file
// in the manifest's directory and renamed into place, so a crash mid-write
// never corrupts the previous manifest. When prune is true, entries never
// marked seen this run are dropped first; callers enable pruning only after
// a complete recursive walk, so narrowing scope to a single folder or
// --no-recursive never discards valid entries.
func (s *Store) Flush(prune bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prune {
		for id := range s.entries {
			if !s.seen[id] {
				delete(s.entries, id)
			}
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.path, append(data, '\n'), 0o644)
}
