// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quip-export/pkg/types"
)

// frontMatter is the YAML header prepended to every exported document.
type frontMatter struct {
	Title       string `yaml:"title"`
	ThreadID    string `yaml:"thread_id"`
	QuipURL     string `yaml:"quip_url"`
	UpdatedUsec int64  `yaml:"updated_usec"`
	ExportedAt  int64  `yaml:"exported_at"`
	FolderPath  string `yaml:"folder_path,omitempty"`
}

// timeNow is swapped in tests for stable front matter.
var timeNow = time.Now

// withFrontMatter renders the document: YAML front matter between ---
// fences, a blank line, then the Markdown body.
func withFrontMatter(meta types.ThreadMeta, body string) ([]byte, error) {
	url := meta.Link
	if url == "" {
		url = "https://quip.com/" + meta.ID
	}
	fm := frontMatter{
		Title:       meta.Title,
		ThreadID:    meta.ID,
		QuipURL:     url,
		UpdatedUsec: meta.UpdatedUsec,
		ExportedAt:  timeNow().Unix(),
		FolderPath:  meta.FolderPath,
	}

	data, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.Bytes(), nil
}
