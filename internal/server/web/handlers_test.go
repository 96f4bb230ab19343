package web

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/filehost/internal/logging"
	"github.com/dmitrijs2005/filehost/internal/server/config"
	"github.com/dmitrijs2005/filehost/internal/server/files"
	"github.com/dmitrijs2005/filehost/internal/server/render"
	"github.com/dmitrijs2005/filehost/internal/server/sessions"
	"github.com/dmitrijs2005/filehost/internal/server/usermanager"
	"github.com/dmitrijs2005/filehost/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPages = map[string]string{
	"index.html":   "<h1>filehost</h1>",
	"signup.html":  "<h1>signup</h1><p>{error}</p>",
	"login.html":   "<h1>login</h1><p>{error}</p>",
	"myfiles.html": "<h1>{name}'s files</h1><ul>{files}</ul>",
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	tplDir := t.TempDir()
	for name, content := range testPages {
		require.NoError(t, os.WriteFile(filepath.Join(tplDir, name), []byte(content), 0o660))
	}

	cfg := &config.Config{
		ListenAddr:     ":0",
		StorageRoot:    root,
		MaxUploadBytes: 1 << 20,
		TemplateDir:    tplDir,
		StaticDir:      t.TempDir(),
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	registry, err := users.OpenRegistry(root)
	require.NoError(t, err)
	manager := usermanager.New(registry, sessions.NewTable(0), logger)

	return NewServer(cfg, logger, manager, files.NewStore(root), render.New(tplDir))
}

func postForm(t *testing.T, s *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func get(t *testing.T, s *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, s *Server, name, password string) *http.Cookie {
	t.Helper()

	w := postForm(t, s, "/signup.html", url.Values{"name": {name}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/index.html", w.Header().Get("Location"))

	w = postForm(t, s, "/login.html", url.Values{"name": {name}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/myfiles.html", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionCookie, cookies[0].Name)
	return cookies[0]
}

func uploadFile(t *testing.T, s *Server, cookie *http.Cookie, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/myfiles.html", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestSignupLoginFlow(t *testing.T) {
	s := newTestServer(t)

	cookie := signupAndLogin(t, s, "alice", "pw")
	assert.True(t, cookie.HttpOnly)

	w := get(t, s, "/myfiles.html", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice's files")
}

func TestSignupDuplicate(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{"name": {"alice"}, "password": {"pw"}}
	w := postForm(t, s, "/signup.html", form, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(t, s, "/signup.html", form, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestSignupUnsafeName(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/signup.html", url.Values{"name": {"../evil"}, "password": {"pw"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must not")
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/signup.html", url.Values{"name": {"alice"}, "password": {"pw"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(t, s, "/login.html", url.Values{"name": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies(), "failed login must not set a cookie")
	assert.Contains(t, w.Body.String(), "doesn&#39;t correspond")
}

func TestLoginUnknownUserSameMessage(t *testing.T) {
	s := newTestServer(t)

	w := postForm(t, s, "/signup.html", url.Values{"name": {"alice"}, "password": {"pw"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	wrongPw := postForm(t, s, "/login.html", url.Values{"name": {"alice"}, "password": {"x"}}, nil)
	unknown := postForm(t, s, "/login.html", url.Values{"name": {"ghost"}, "password": {"x"}}, nil)

	assert.Equal(t, wrongPw.Code, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
}

func TestMyFilesRequiresSession(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/myfiles.html", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login.html", w.Header().Get("Location"))

	w = get(t, s, "/myfiles.html", &http.Cookie{Name: sessionCookie, Value: "bogus"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login.html", w.Header().Get("Location"))
}

func TestUploadListOpenDelete(t *testing.T) {
	s := newTestServer(t)
	cookie := signupAndLogin(t, s, "alice", "pw")

	w := uploadFile(t, s, cookie, "hello.txt", "hi")
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = get(t, s, "/myfiles.html", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello.txt")
	assert.Contains(t, w.Body.String(), "2 bytes")

	w = get(t, s, "/myfiles.html/open/hello.txt", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", w.Body.String())

	w = postForm(t, s, "/myfiles.html/delete/hello.txt", nil, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = get(t, s, "/myfiles.html/open/hello.txt", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, s, "/myfiles.html", cookie)
	assert.NotContains(t, w.Body.String(), "hello.txt")
}

func TestUploadOverwrites(t *testing.T) {
	s := newTestServer(t)
	cookie := signupAndLogin(t, s, "alice", "pw")

	require.Equal(t, http.StatusSeeOther, uploadFile(t, s, cookie, "f.txt", "first").Code)
	require.Equal(t, http.StatusSeeOther, uploadFile(t, s, cookie, "f.txt", "second").Code)

	w := get(t, s, "/myfiles.html/open/f.txt", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "second", w.Body.String())
}

func TestSessionSupersession(t *testing.T) {
	s := newTestServer(t)
	_ = signupAndLogin(t, s, "alice", "pw")

	// first login's cookie
	w := postForm(t, s, "/login.html", url.Values{"name": {"alice"}, "password": {"pw"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	c1 := w.Result().Cookies()[0]

	// second login from another client
	w = postForm(t, s, "/login.html", url.Values{"name": {"alice"}, "password": {"pw"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	c2 := w.Result().Cookies()[0]

	w = get(t, s, "/myfiles.html", c1)
	assert.Equal(t, http.StatusSeeOther, w.Code, "old session must be superseded")
	assert.Equal(t, "/login.html", w.Header().Get("Location"))

	w = get(t, s, "/myfiles.html", c2)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserIsolation(t *testing.T) {
	s := newTestServer(t)

	alice := signupAndLogin(t, s, "alice", "pw1")
	bob := signupAndLogin(t, s, "bob", "pw2")

	require.Equal(t, http.StatusSeeOther, uploadFile(t, s, alice, "secret.txt", "alice only").Code)

	w := get(t, s, "/myfiles.html", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret.txt")

	w = get(t, s, "/myfiles.html/open/secret.txt", bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postForm(t, s, "/myfiles.html/delete/secret.txt", nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// alice still has her file
	w = get(t, s, "/myfiles.html/open/secret.txt", alice)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpenMissingFile(t *testing.T) {
	s := newTestServer(t)
	cookie := signupAndLogin(t, s, "alice", "pw")

	w := get(t, s, "/myfiles.html/open/nope.txt", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsNonMultipart(t *testing.T) {
	s := newTestServer(t)
	cookie := signupAndLogin(t, s, "alice", "pw")

	w := postForm(t, s, "/myfiles.html", url.Values{"file": {"x"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexServedWithoutSession(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/index.html", "/signup.html", "/login.html"} {
		w := get(t, s, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}
