// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns Quip HTML snapshots into Markdown text.
package convert

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/pdiddy/quip-export/internal/fsutil"
)

// Converter transforms a document HTML body into Markdown. Unsupported
// elements degrade to textual placeholders rather than erroring, so a
// conversion failure is rare and always per-document.
type Converter interface {
	Convert(html string) (string, error)
}

// Markdown is the production Converter, backed by html-to-markdown.
type Markdown struct{}

var (
	imgTag    = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	imgSrc    = regexp.MustCompile(`(?is)\bsrc\s*=\s*["']([^"']*)["']`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Convert converts html to Markdown. Images are not downloaded; each <img>
// degrades to a bracketed placeholder naming its source file when one can
// be determined. Runs of three or more blank lines collapse to one blank
// line and the output ends with a single newline.
func (Markdown) Convert(html string) (string, error) {
	html = imgTag.ReplaceAllStringFunc(html, imagePlaceholder)

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML: %w", err)
	}

	md = blankRuns.ReplaceAllString(md, "\n\n")
	return strings.TrimRight(md, "\n") + "\n", nil
}

func imagePlaceholder(tag string) string {
	if m := imgSrc.FindStringSubmatch(tag); m != nil {
		if name := filenameFromURL(m[1]); name != "" {
			return "<p>[image: " + name + "]</p>"
		}
	}
	return "<p>[image]</p>"
}

// filenameFromURL extracts the last path element of an image URL, without
// query or fragment. Data URLs and bare hosts yield "".
func filenameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	raw = strings.SplitN(raw, "?", 2)[0]
	raw = strings.SplitN(raw, "#", 2)[0]
	base := path.Base(raw)
	if base == "." || base == "/" || strings.Contains(base, "://") {
		return ""
	}
	return fsutil.Slugify(base)
}
