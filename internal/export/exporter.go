// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export orchestrates an export run: walk the folder graph, plan
// which documents need work, then fetch, convert, and write them with a
// bounded worker pool, recording progress in the manifest.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/quip-export/internal/convert"
	"github.com/pdiddy/quip-export/internal/fsutil"
	"github.com/pdiddy/quip-export/internal/manifest"
	"github.com/pdiddy/quip-export/internal/quip"
	"github.com/pdiddy/quip-export/internal/walker"
	"github.com/pdiddy/quip-export/pkg/types"
)

const defaultConcurrency = 4

// Client is the remote surface the exporter consumes.
type Client interface {
	walker.Client
	GetThread(ctx context.Context, id string) (*quip.Thread, error)
	AccessibleFolders(ctx context.Context, w io.Writer) ([]types.FolderNode, error)
}

// Failure records one document (or folder, during --all runs) that could
// not be exported.
type Failure struct {
	ID    string
	Title string
	Err   error
}

// Result summarizes an export run.
type Result struct {
	Exported int
	Skipped  int
	Failed   []Failure
}

// HasFailures reports whether any documents failed.
func (r Result) HasFailures() bool { return len(r.Failed) > 0 }

func (r *Result) merge(other Result) {
	r.Exported += other.Exported
	r.Skipped += other.Skipped
	r.Failed = append(r.Failed, other.Failed...)
}

// Exporter drives export runs against one remote client and converter.
type Exporter struct {
	client Client
	conv   convert.Converter
	cfg    types.ExportConfig

	// w is shared by the worker pool; all writes go through printf.
	wmu sync.Mutex
	w   io.Writer
}

// New builds an Exporter. Status lines for each document go to w.
func New(client Client, conv convert.Converter, cfg types.ExportConfig, w io.Writer) *Exporter {
	return &Exporter{client: client, conv: conv, cfg: cfg, w: w}
}

// printf emits one status line. Workers write concurrently and w need not
// be thread-safe, so output is serialized here.
func (e *Exporter) printf(format string, args ...any) {
	e.wmu.Lock()
	defer e.wmu.Unlock()
	fmt.Fprintf(e.w, format, args...)
}

// planItem is one pending document with its resolved target path. key is
// empty for threads without a remote timestamp; their change detection
// happens after the fetch, against a content hash.
type planItem struct {
	thread  types.ThreadMeta
	relPath string
	key     string
	reason  manifest.Reason
}

// Run exports the folder identified by folderID (web shorthand or API ID)
// into cfg.OutDir/<slugified folder title>/. Per-document failures are
// collected in the result; only run-wide conditions (bad credentials,
// unreachable root folder, unwritable export root) return an error. On
// cancellation the manifest still records whatever completed.
func (e *Exporter) Run(ctx context.Context, folderID string) (Result, error) {
	root, err := e.client.GetFolder(ctx, folderID)
	if err != nil {
		return Result{}, fmt.Errorf("resolving folder %s: %w", folderID, err)
	}

	exportRoot := filepath.Join(e.cfg.OutDir, fsutil.Slugify(root.Title))
	if err := os.MkdirAll(exportRoot, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating export root: %w", err)
	}
	man := manifest.LoadOrCreate(filepath.Join(exportRoot, manifest.FileName))

	e.printf("exporting '%s' to %s\n", root.Title, exportRoot)

	var result Result
	plan, stats, err := e.buildPlan(ctx, root.ID, man, &result)
	if err != nil {
		return result, err
	}

	runErr := e.executePlan(ctx, exportRoot, plan, man, &result)

	// Pruning needs proof of unreachability: a complete recursive walk
	// and a run that was not cut short.
	prune := e.cfg.Recursive && stats.FoldersFailed == 0 && runErr == nil
	if ferr := man.Flush(prune); ferr != nil {
		if runErr == nil {
			runErr = fmt.Errorf("writing manifest: %w", ferr)
		} else {
			e.printf("warning: writing manifest: %v\n", ferr)
		}
	}
	if runErr != nil {
		return result, runErr
	}

	e.printf("\ndone: %d exported, %d skipped, %d failed\n",
		result.Exported, result.Skipped, len(result.Failed))
	return result, nil
}

// RunAll exports every folder accessible from the token. A failure on one
// folder does not stop the remaining folders; authorization failures and
// cancellation do.
func (e *Exporter) RunAll(ctx context.Context) (Result, error) {
	folders, err := e.client.AccessibleFolders(ctx, e.w)
	if err != nil {
		return Result{}, err
	}
	if len(folders) == 0 {
		e.printf("no accessible folders found\n")
		return Result{}, nil
	}

	e.printf("found %d top-level folder(s)\n", len(folders))

	var total Result
	for i, f := range folders {
		e.printf("\n[%d/%d] folder '%s' (%s)\n", i+1, len(folders), f.Title, f.ID)
		res, err := e.Run(ctx, f.ID)
		total.merge(res)
		if err != nil {
			if errors.Is(err, quip.ErrAuth) || ctx.Err() != nil {
				return total, err
			}
			e.printf("error exporting folder '%s': %v\n", f.Title, err)
			total.Failed = append(total.Failed, Failure{ID: f.ID, Title: f.Title, Err: err})
		}
	}
	return total, nil
}

// buildPlan drains the walker single-threaded, assigning target paths and
// consulting the manifest, so skipped documents cost no body fetch and
// collision handling stays deterministic.
func (e *Exporter) buildPlan(ctx context.Context, rootID string, man *manifest.Store, result *Result) ([]planItem, walker.Stats, error) {
	var plan []planItem
	used := make(map[string]string)

	opts := walker.Options{Recursive: e.cfg.Recursive, MaintainStructure: e.cfg.MaintainStructure}
	stats, err := walker.Walk(ctx, e.client, []string{rootID}, opts, e.w, func(it walker.Item, err error) error {
		if err != nil {
			if errors.Is(err, quip.ErrAuth) || errors.Is(err, context.Canceled) {
				return err
			}
			// The document still exists remotely; keep its manifest entry
			// out of pruning's reach.
			man.MarkSeen(it.Thread.ID)
			e.printf("failed   %s: %v\n", it.Thread.ID, err)
			result.Failed = append(result.Failed, Failure{ID: it.Thread.ID, Err: err})
			return nil
		}

		t := it.Thread
		man.MarkSeen(t.ID)
		relPath := targetPath(it, used)

		if t.UpdatedUsec > 0 {
			key := strconv.FormatInt(t.UpdatedUsec, 10)
			need, reason := man.NeedsExport(t.ID, key, relPath)
			if !need {
				e.printf("skipped  %s\n", t.Title)
				result.Skipped++
				return nil
			}
			plan = append(plan, planItem{thread: t, relPath: relPath, key: key, reason: reason})
			return nil
		}

		// No remote timestamp: change detection needs the content hash,
		// so the decision moves to the execute phase.
		plan = append(plan, planItem{thread: t, relPath: relPath})
		return nil
	})
	return plan, stats, err
}

// executePlan fetches, converts, and writes the planned documents with a
// bounded worker pool. Only authorization failures and cancellation abort
// the pool; everything else lands in result.Failed.
func (e *Exporter) executePlan(ctx context.Context, exportRoot string, plan []planItem, man *manifest.Store, result *Result) error {
	concurrency := e.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	for _, it := range plan {
		g.Go(func() error {
			exported, err := e.exportOne(gctx, exportRoot, man, it)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && exported:
				result.Exported++
			case err == nil:
				result.Skipped++
			case errors.Is(err, quip.ErrAuth),
				errors.Is(err, context.Canceled),
				errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				e.printf("failed   %s: %v\n", it.thread.Title, err)
				result.Failed = append(result.Failed, Failure{ID: it.thread.ID, Title: it.thread.Title, Err: err})
			}
			return nil
		})
	}
	return g.Wait()
}

// exportOne runs the fetch → convert → write → record pipeline for one
// document. The write is scoped: temp file plus rename, so no partial
// Markdown is ever visible at the final path.
func (e *Exporter) exportOne(ctx context.Context, exportRoot string, man *manifest.Store, it planItem) (exported bool, err error) {
	th, err := e.client.GetThread(ctx, it.thread.ID)
	if err != nil {
		return false, fmt.Errorf("fetching: %w", err)
	}
	if th.HTML == "" {
		return false, fmt.Errorf("thread has no HTML content")
	}

	key, reason := it.key, it.reason
	if key == "" {
		sum := sha256.Sum256([]byte(th.HTML))
		key = hex.EncodeToString(sum[:])
		need, r := man.NeedsExport(it.thread.ID, key, it.relPath)
		if !need {
			e.printf("skipped  %s (unchanged content)\n", it.thread.Title)
			return false, nil
		}
		reason = r
	}

	body, err := e.conv.Convert(th.HTML)
	if err != nil {
		return false, fmt.Errorf("converting: %w", err)
	}

	content, err := withFrontMatter(it.thread, body)
	if err != nil {
		return false, fmt.Errorf("rendering front matter: %w", err)
	}

	absPath := filepath.Join(exportRoot, filepath.FromSlash(it.relPath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(absPath, content, 0o644); err != nil {
		return false, fmt.Errorf("writing: %w", err)
	}

	// Read the old location before Record overwrites it.
	if reason == manifest.ReasonMoved && e.cfg.DeleteStale {
		if old := man.PathFor(it.thread.ID); old != "" && old != it.relPath {
			stale := filepath.Join(exportRoot, filepath.FromSlash(old))
			if rmErr := os.Remove(stale); rmErr != nil && !os.IsNotExist(rmErr) {
				e.printf("warning: could not remove stale file %s: %v\n", old, rmErr)
			}
		}
	}

	man.Record(it.thread.ID, manifest.NewEntry(it.thread.Title, it.relPath, key, it.thread.FolderPath))
	e.printf("exported %s (%s)\n", it.relPath, reason)
	return true, nil
}

// targetPath computes the output file path relative to the export root,
// "/"-separated for a portable manifest. Two distinct threads whose titles
// sanitize to the same name within one directory are disambiguated by
// appending the later thread's ID; plan order is deterministic, so the
// assignment is too.
func targetPath(it walker.Item, used map[string]string) string {
	name := fsutil.Slugify(it.Thread.Title)
	rel := path.Join(it.Path, name+".md")
	if owner, taken := used[rel]; taken && owner != it.Thread.ID {
		rel = path.Join(it.Path, name+" - "+it.Thread.ID+".md")
	}
	used[rel] = it.Thread.ID
	return rel
}
