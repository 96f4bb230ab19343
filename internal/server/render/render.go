// Package render fills the named placeholders of the static HTML pages:
// {name}, {error}, and {files}. The pages are plain files on disk; no
// template engine is involved beyond string substitution, which is the
// contract the page markup relies on.
package render

import (
	"fmt"
	"html"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filehost/internal/server/files"
)

// PageData carries the substitution values for one page render. Zero
// values blank the corresponding placeholder.
type PageData struct {
	Name  string
	Error string
	Files []files.Entry
}

// Renderer loads page templates from a directory.
type Renderer struct {
	dir string
}

// New creates a Renderer over the given template directory.
func New(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Page reads the named template and substitutes the placeholders. All
// user-derived values are HTML-escaped before substitution.
func (r *Renderer) Page(page string, data PageData) (string, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, page))
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", page, err)
	}

	out := string(raw)
	out = strings.ReplaceAll(out, "{name}", html.EscapeString(data.Name))
	out = strings.ReplaceAll(out, "{error}", html.EscapeString(data.Error))
	out = strings.ReplaceAll(out, "{files}", fileList(data.Files))
	return out, nil
}

// fileList renders the user's files as list items with open and delete
// controls, matching the markup myfiles.html expects.
func fileList(entries []files.Entry) string {
	if len(entries) == 0 {
		return "<li class=\"empty\">No files uploaded yet.</li>"
	}

	var b strings.Builder
	for _, e := range entries {
		name := html.EscapeString(e.Name)
		href := url.PathEscape(e.Name)
		fmt.Fprintf(&b,
			"<li><a href=\"/myfiles.html/open/%s\">%s</a> <span class=\"size\">%d bytes</span> "+
				"<form method=\"post\" action=\"/myfiles.html/delete/%s\"><button type=\"submit\">Delete</button></form></li>\n",
			href, name, e.Size, href)
	}
	return b.String()
}
