// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quip is a minimal client for the Quip Automation API: folder
// listings, thread snapshots, and the current user's folder roots.
package quip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/quip-export/internal/httputil"
	"github.com/pdiddy/quip-export/pkg/types"
)

const (
	// DefaultBaseURL is the Quip Automation API root.
	DefaultBaseURL = "https://platform.quip.com/1"

	defaultTimeout   = 45 * time.Second
	defaultUserAgent = "quip-export/0.1"
)

// Client talks to the Quip API over HTTP with bearer-token auth, a uniform
// retry policy, and a politeness delay between calls.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	userAgent string
	retry     types.RetryConfig
	delay     time.Duration
}

// NewClient builds a Client from cfg, filling unset fields with defaults.
func NewClient(cfg types.QuipConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	// Zero means no pause; the CLI supplies the default politeness delay.
	delay := cfg.RequestDelay
	if delay < 0 {
		delay = 0
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		token:     cfg.AccessToken,
		userAgent: userAgent,
		retry:     cfg.Retry,
		delay:     delay,
	}
}

// API envelope structures. Folder and thread payloads arrive wrapped in a
// named object; thread HTML may sit at the top level or inside the thread.
type folderResponse struct {
	Folder   folderObject `json:"folder"`
	Children []childRef   `json:"children"`
}

type folderObject struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type childRef struct {
	ThreadID string `json:"thread_id"`
	FolderID string `json:"folder_id"`
}

type threadResponse struct {
	Thread threadObject `json:"thread"`
	HTML   string       `json:"html"`
}

type threadObject struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	UpdatedUsec int64  `json:"updated_usec"`
	Link        string `json:"link"`
	HTML        string `json:"html"`
}

// Thread is a full document snapshot: metadata plus the HTML body.
type Thread struct {
	Meta types.ThreadMeta
	HTML string
}

// User carries the folder roots reachable from the current token. Trash,
// starred, and archive folders are excluded up front.
type User struct {
	ID              string
	DesktopFolderID string
	PrivateFolderID string
	SharedFolderIDs []string
	GroupIDs        []string
}

type userResponse struct {
	ID              string   `json:"id"`
	DesktopFolderID string   `json:"desktop_folder_id"`
	PrivateFolderID string   `json:"private_folder_id"`
	SharedFolderIDs []string `json:"shared_folder_ids"`
	GroupIDs        []string `json:"group_ids"`
	TrashFolderID   string   `json:"trash_folder_id"`
	StarredFolderID string   `json:"starred_folder_id"`
	ArchiveFolderID string   `json:"archive_folder_id"`
}

type groupResponse struct {
	Group struct {
		FolderID string `json:"folder_id"`
	} `json:"group"`
}

// GetFolder fetches a folder's metadata and direct children. It accepts
// both web shorthand IDs and API IDs; the returned node carries the
// canonical API ID.
func (c *Client) GetFolder(ctx context.Context, id string) (*types.FolderNode, error) {
	var fr folderResponse
	if err := c.getJSON(ctx, "/folders/"+id, &fr); err != nil {
		return nil, err
	}

	node := &types.FolderNode{ID: fr.Folder.ID, Title: fr.Folder.Title}
	if node.ID == "" {
		node.ID = id
	}
	if node.Title == "" {
		node.Title = node.ID
	}
	for _, ch := range fr.Children {
		switch {
		case ch.ThreadID != "":
			node.ThreadIDs = append(node.ThreadIDs, ch.ThreadID)
		case ch.FolderID != "":
			node.FolderIDs = append(node.FolderIDs, ch.FolderID)
		}
	}
	return node, nil
}

// GetThread fetches a thread's metadata and HTML snapshot.
func (c *Client) GetThread(ctx context.Context, id string) (*Thread, error) {
	var tr threadResponse
	if err := c.getJSON(ctx, "/threads/"+id, &tr); err != nil {
		return nil, err
	}

	meta := types.ThreadMeta{
		ID:          tr.Thread.ID,
		Title:       tr.Thread.Title,
		UpdatedUsec: tr.Thread.UpdatedUsec,
		Link:        tr.Thread.Link,
	}
	if meta.ID == "" {
		meta.ID = id
	}
	if meta.Title == "" {
		meta.Title = meta.ID
	}

	html := tr.HTML
	if html == "" {
		html = tr.Thread.HTML
	}
	return &Thread{Meta: meta, HTML: html}, nil
}

// GetThreadMeta fetches a thread's metadata. The API serves metadata and
// body from the same endpoint; this accessor exists so traversal code does
// not carry HTML around.
func (c *Client) GetThreadMeta(ctx context.Context, id string) (*types.ThreadMeta, error) {
	t, err := c.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	meta := t.Meta
	return &meta, nil
}

// GetCurrentUser fetches the token holder's folder roots.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var ur userResponse
	if err := c.getJSON(ctx, "/users/current", &ur); err != nil {
		return nil, err
	}

	skip := map[string]bool{
		ur.TrashFolderID:   true,
		ur.StarredFolderID: true,
		ur.ArchiveFolderID: true,
	}
	u := &User{ID: ur.ID, GroupIDs: ur.GroupIDs}
	if ur.DesktopFolderID != "" && !skip[ur.DesktopFolderID] {
		u.DesktopFolderID = ur.DesktopFolderID
	}
	if ur.PrivateFolderID != "" && !skip[ur.PrivateFolderID] {
		u.PrivateFolderID = ur.PrivateFolderID
	}
	for _, id := range ur.SharedFolderIDs {
		if id != "" && !skip[id] {
			u.SharedFolderIDs = append(u.SharedFolderIDs, id)
		}
	}
	return u, nil
}

// AccessibleFolders returns the top-level folders reachable from the
// current token: desktop, private, shared, and group workspace folders.
// Folders that cannot be fetched produce a warning on w and are skipped;
// only the initial user lookup is fatal.
func (c *Client) AccessibleFolders(ctx context.Context, w io.Writer) ([]types.FolderNode, error) {
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}

	candidates := make([]string, 0, 2+len(user.SharedFolderIDs)+len(user.GroupIDs))
	if user.DesktopFolderID != "" {
		candidates = append(candidates, user.DesktopFolderID)
	}
	if user.PrivateFolderID != "" {
		candidates = append(candidates, user.PrivateFolderID)
	}
	candidates = append(candidates, user.SharedFolderIDs...)

	for _, gid := range user.GroupIDs {
		var gr groupResponse
		if err := c.getJSON(ctx, "/groups/"+gid, &gr); err != nil {
			fmt.Fprintf(w, "warning: could not fetch group %s: %v\n", gid, err)
			continue
		}
		if gr.Group.FolderID != "" {
			candidates = append(candidates, gr.Group.FolderID)
		}
	}

	var folders []types.FolderNode
	seen := make(map[string]bool)
	for _, id := range candidates {
		if seen[id] {
			continue
		}
		seen[id] = true
		node, err := c.GetFolder(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "warning: could not fetch folder %s: %v\n", id, err)
			continue
		}
		folders = append(folders, *node)
	}
	return folders, nil
}

// getJSON performs an authenticated GET against the API and decodes the
// response into v, mapping statuses onto the client error taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.retry)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w (HTTP %d for %s)", ErrNotFound, resp.StatusCode, path)
	case httputil.Retryable(resp.StatusCode):
		return &TransientError{Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("quip: HTTP %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return c.pause(ctx)
}

// pause applies the politeness delay between calls, honoring cancellation.
func (c *Client) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.delay):
		return nil
	}
}
