// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quip-export/pkg/types"
)

// newTestClient points a Client at the given test server with no request
// delay and a single-attempt retry policy unless overridden.
func newTestClient(ts *httptest.Server, policy types.RetryConfig) *Client {
	return NewClient(types.QuipConfig{
		HTTPConfig:  types.HTTPConfig{Timeout: 5 * time.Second},
		BaseURL:     ts.URL,
		AccessToken: "test-token",
		Retry:       policy,
	})
}

func TestNewClient_RequestDelay(t *testing.T) {
	// Zero must mean "no pause", not the CLI default.
	assert.Equal(t, time.Duration(0), NewClient(types.QuipConfig{}).delay)
	assert.Equal(t, time.Duration(0), NewClient(types.QuipConfig{RequestDelay: -1}).delay)
	assert.Equal(t, time.Second, NewClient(types.QuipConfig{RequestDelay: time.Second}).delay)
}

func onePolicy() types.RetryConfig {
	return types.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond}
}

func TestGetFolder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/folders/WT24OK8OZC6B", r.URL.Path)
		fmt.Fprint(w, `{
			"folder": {"id": "FLD1", "title": "Projects"},
			"children": [
				{"thread_id": "doc-1"},
				{"folder_id": "FLD2"},
				{"thread_id": "doc-2"}
			]
		}`)
	}))
	defer ts.Close()

	c := newTestClient(ts, onePolicy())
	node, err := c.GetFolder(context.Background(), "WT24OK8OZC6B")
	require.NoError(t, err)

	assert.Equal(t, "FLD1", node.ID)
	assert.Equal(t, "Projects", node.Title)
	assert.Equal(t, []string{"doc-1", "doc-2"}, node.ThreadIDs)
	assert.Equal(t, []string{"FLD2"}, node.FolderIDs)
}

func TestGetFolder_FallbackIDAndTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"children": []}`)
	}))
	defer ts.Close()

	c := newTestClient(ts, onePolicy())
	node, err := c.GetFolder(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, "ABC", node.ID)
	assert.Equal(t, "ABC", node.Title)
}

func TestGetThread_TopLevelHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/threads/doc-1", r.URL.Path)
		fmt.Fprint(w, `{
			"thread": {"id": "doc-1", "title": "Plan", "updated_usec": 100, "link": "https://quip.com/doc-1"},
			"html": "<h1>Plan</h1>"
		}`)
	}))
	defer ts.Close()

	c := newTestClient(ts, onePolicy())
	th, err := c.GetThread(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", th.Meta.ID)
	assert.Equal(t, "Plan", th.Meta.Title)
	assert.Equal(t, int64(100), th.Meta.UpdatedUsec)
	assert.Equal(t, "https://quip.com/doc-1", th.Meta.Link)
	assert.Equal(t, "<h1>Plan</h1>", th.HTML)
}

func TestGetThread_NestedHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"thread": {"id": "doc-2", "title": "Notes", "html": "<p>hi</p>"}}`)
	}))
	defer ts.Close()

	c := newTestClient(ts, onePolicy())
	th, err := c.GetThread(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", th.HTML)
}

func TestGetJSON_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrAuth)
		}},
		{"forbidden", http.StatusForbidden, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrAuth)
		}},
		{"not found", http.StatusNotFound, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var te *TransientError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, http.StatusTooManyRequests, te.Status)
		}},
		{"bad gateway", http.StatusBadGateway, func(t *testing.T, err error) {
			var te *TransientError
			require.ErrorAs(t, err, &te)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			assert.NotErrorIs(t, err, ErrAuth)
			var te *TransientError
			assert.False(t, errors.As(err, &te))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			c := newTestClient(ts, onePolicy())
			_, err := c.GetFolder(context.Background(), "X")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAccessibleFolders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/current", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"id": "U1",
			"desktop_folder_id": "DESK",
			"private_folder_id": "PRIV",
			"shared_folder_ids": ["SHARED", "TRASH"],
			"group_ids": ["G1"],
			"trash_folder_id": "TRASH",
			"starred_folder_id": "STAR",
			"archive_folder_id": "ARCH"
		}`)
	})
	mux.HandleFunc("/groups/G1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"group": {"folder_id": "GFLD"}}`)
	})
	mux.HandleFunc("/folders/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/folders/"):]
		if id == "GFLD" {
			// Group folder fetch fails; it must be skipped with a warning.
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"folder": {"id": %q, "title": "Folder %s"}}`, id, id)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := newTestClient(ts, onePolicy())
	var warnings bytes.Buffer
	folders, err := c.AccessibleFolders(context.Background(), &warnings)
	require.NoError(t, err)

	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	// Trash is excluded, the failing group folder is skipped.
	assert.Equal(t, []string{"DESK", "PRIV", "SHARED"}, ids)
	assert.Contains(t, warnings.String(), "GFLD")
}

func TestGetJSON_RetriesTransientStatus(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"folder": {"id": "F", "title": "F"}}`)
	}))
	defer ts.Close()

	c := newTestClient(ts, types.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})
	_, err := c.GetFolder(context.Background(), "F")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
