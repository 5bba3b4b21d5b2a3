// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quip-export/pkg/types"
)

func TestWithFrontMatter(t *testing.T) {
	old := timeNow
	timeNow = func() time.Time { return time.Unix(1700000000, 0) }
	defer func() { timeNow = old }()

	meta := types.ThreadMeta{
		ID:          "doc-1",
		Title:       "Plan",
		UpdatedUsec: 100,
		Link:        "https://quip.com/abc",
		FolderPath:  "Sub",
	}
	out, err := withFrontMatter(meta, "# Plan\n")
	require.NoError(t, err)

	s := string(out)
	assert.True(t, len(s) > 0 && s[:4] == "---\n")
	assert.Contains(t, s, "title: Plan\n")
	assert.Contains(t, s, "thread_id: doc-1\n")
	assert.Contains(t, s, "quip_url: https://quip.com/abc\n")
	assert.Contains(t, s, "updated_usec: 100\n")
	assert.Contains(t, s, "exported_at: 1700000000\n")
	assert.Contains(t, s, "folder_path: Sub\n")
	assert.Contains(t, s, "---\n\n# Plan\n")
}

func TestWithFrontMatter_DefaultURLAndOmittedPath(t *testing.T) {
	out, err := withFrontMatter(types.ThreadMeta{ID: "doc-9", Title: "T"}, "body\n")
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "quip_url: https://quip.com/doc-9\n")
	assert.NotContains(t, s, "folder_path:")
}
