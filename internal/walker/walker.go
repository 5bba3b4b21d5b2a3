// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package walker enumerates the reachable folder graph and emits the
// documents it contains, one folder at a time.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/pdiddy/quip-export/internal/fsutil"
	"github.com/pdiddy/quip-export/internal/quip"
	"github.com/pdiddy/quip-export/pkg/types"
)

// Client is the subset of the Quip API the walker consumes.
type Client interface {
	GetFolder(ctx context.Context, id string) (*types.FolderNode, error)
	GetThreadMeta(ctx context.Context, id string) (*types.ThreadMeta, error)
}

// Options control traversal scope and path computation.
type Options struct {
	// Recursive descends into child folders.
	Recursive bool

	// MaintainStructure computes each document's folder path below the
	// root. When false every document is emitted with an empty path.
	MaintainStructure bool
}

// Item pairs a document with its computed folder path below the root.
type Item struct {
	Path   string
	Thread types.ThreadMeta
}

// WalkFunc receives one document per call, in the manner of fs.WalkDirFunc:
// on a thread whose metadata could not be fetched, item carries only the
// thread ID and err is non-nil. Returning a non-nil error stops the walk.
type WalkFunc func(item Item, err error) error

// Stats reports traversal health. FoldersFailed counts subtrees abandoned
// because their listing failed; manifest pruning must be skipped when it
// is nonzero, since documents under those subtrees were never seen.
type Stats struct {
	FoldersVisited int
	FoldersFailed  int
}

// Walk traverses the folder graph breadth-first from roots and invokes fn
// once per document. The visited set is keyed by folder ID, so cycles and
// shared subfolders are descended at most once and each folder's documents
// are emitted at most once overall; a thread placed under several visited
// folders is emitted only at its first placement. Within a folder threads
// are emitted sorted by lowercased title then ID, keeping run output
// deterministic.
//
// A failure listing a non-root folder produces a warning on w and abandons
// that subtree only; failures on the roots themselves, and authorization
// failures anywhere, are returned as errors.
func Walk(ctx context.Context, client Client, roots []string, opts Options, w io.Writer, fn WalkFunc) (Stats, error) {
	type pending struct {
		id         string
		parentPath string
		isRoot     bool
	}

	var stats Stats
	seenFolders := make(map[string]bool)
	seenThreads := make(map[string]bool)
	queue := make([]pending, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, pending{id: r, isRoot: true})
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seenFolders[p.id] {
			continue
		}
		seenFolders[p.id] = true

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		node, err := client.GetFolder(ctx, p.id)
		if err != nil {
			if p.isRoot {
				return stats, fmt.Errorf("listing root folder %s: %w", p.id, err)
			}
			if errors.Is(err, quip.ErrAuth) || errors.Is(err, context.Canceled) {
				return stats, err
			}
			fmt.Fprintf(w, "warning: skipping folder %s: %v\n", p.id, err)
			stats.FoldersFailed++
			continue
		}
		stats.FoldersVisited++

		// The root folder itself contributes no path component.
		folderPath := p.parentPath
		if !p.isRoot && opts.MaintainStructure {
			folderPath = path.Join(p.parentPath, fsutil.Slugify(node.Title))
		}

		// Visited-folder dedup covers re-descent; threads shared across
		// distinct folders still need their own dedup.
		metas := make([]types.ThreadMeta, 0, len(node.ThreadIDs))
		for _, tid := range node.ThreadIDs {
			if seenThreads[tid] {
				continue
			}
			seenThreads[tid] = true

			meta, err := client.GetThreadMeta(ctx, tid)
			if err != nil {
				if ferr := fn(Item{Thread: types.ThreadMeta{ID: tid}}, err); ferr != nil {
					return stats, ferr
				}
				continue
			}
			m := *meta
			if opts.MaintainStructure {
				m.FolderPath = folderPath
			}
			metas = append(metas, m)
		}

		sort.Slice(metas, func(i, j int) bool {
			ti, tj := strings.ToLower(metas[i].Title), strings.ToLower(metas[j].Title)
			if ti != tj {
				return ti < tj
			}
			return metas[i].ID < metas[j].ID
		})
		for _, m := range metas {
			if err := fn(Item{Path: m.FolderPath, Thread: m}, nil); err != nil {
				return stats, err
			}
		}

		if !opts.Recursive {
			continue
		}
		for _, fid := range node.FolderIDs {
			queue = append(queue, pending{id: fid, parentPath: folderPath})
		}
	}

	return stats, nil
}
