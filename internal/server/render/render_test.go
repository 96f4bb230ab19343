package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/filehost/internal/server/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o660))
}

func TestRenderer_SubstitutesPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.html", "<p>Hello {name}</p><p class=\"err\">{error}</p>")

	r := New(dir)

	out, err := r.Page("page.html", PageData{Name: "alice", Error: "bad input"})
	require.NoError(t, err)
	assert.Contains(t, out, "Hello alice")
	assert.Contains(t, out, "bad input")
}

func TestRenderer_BlanksMissingValues(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.html", "[{name}][{error}]")

	r := New(dir)

	out, err := r.Page("page.html", PageData{})
	require.NoError(t, err)
	assert.Equal(t, "[][]", out)
}

func TestRenderer_EscapesUserValues(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.html", "{name}{error}")

	r := New(dir)

	out, err := r.Page("page.html", PageData{Name: "<script>", Error: "a&b"})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a&amp;b")
}

func TestRenderer_FileList(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "myfiles.html", "<ul>{files}</ul>")

	r := New(dir)

	out, err := r.Page("myfiles.html", PageData{Files: []files.Entry{
		{Name: "hello.txt", Size: 2},
		{Name: "report & notes.pdf", Size: 10},
	}})
	require.NoError(t, err)
	assert.Contains(t, out, "/myfiles.html/open/hello.txt")
	assert.Contains(t, out, "hello.txt")
	assert.Contains(t, out, "2 bytes")
	assert.Contains(t, out, "report &amp; notes.pdf")
	assert.Contains(t, out, "/myfiles.html/delete/report%20&%20notes.pdf")
}

func TestRenderer_EmptyFileList(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "myfiles.html", "<ul>{files}</ul>")

	r := New(dir)

	out, err := r.Page("myfiles.html", PageData{Name: "alice"})
	require.NoError(t, err)
	assert.Contains(t, out, "No files uploaded yet.")
}

func TestRenderer_MissingTemplate(t *testing.T) {
	r := New(t.TempDir())

	_, err := r.Page("ghost.html", PageData{})
	assert.Error(t, err)
}
