package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"path/filepath"

	"github.com/dmitrijs2005/filehost/internal/common"
	"github.com/dmitrijs2005/filehost/internal/server/render"
	"github.com/dmitrijs2005/filehost/internal/server/users"
	"github.com/gorilla/mux"
)

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "index.html", render.PageData{}, http.StatusOK)
}

func (s *Server) signupPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "signup.html", render.PageData{}, http.StatusOK)
}

func (s *Server) signupSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	password := r.PostFormValue("password")

	err := s.manager.SignUp(name, []byte(password))
	if err == nil {
		http.Redirect(w, r, "/index.html", http.StatusSeeOther)
		return
	}

	switch {
	case errors.Is(err, common.ErrUserExists):
		data := render.PageData{Error: fmt.Sprintf("User named %q already exists.", name)}
		s.renderPage(w, r, "signup.html", data, http.StatusOK)
	case errors.Is(err, common.ErrInvalidFilename):
		data := render.PageData{Error: "User name must not be empty or contain path characters."}
		s.renderPage(w, r, "signup.html", data, http.StatusBadRequest)
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "login.html", render.PageData{}, http.StatusOK)
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	password := r.PostFormValue("password")

	token, err := s.manager.LogIn(name, []byte(password))
	if err != nil {
		if errors.Is(err, common.ErrAuthFailed) {
			data := render.PageData{Error: "User name or password provided doesn't correspond to any existing users."}
			s.renderPage(w, r, "login.html", data, http.StatusUnauthorized)
			return
		}
		s.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/myfiles.html", http.StatusSeeOther)
}

// currentUser resolves the session cookie. On any auth failure it redirects
// to the login page and reports false; handlers just return.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (users.User, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		http.Redirect(w, r, "/login.html", http.StatusSeeOther)
		return users.User{}, false
	}

	u, err := s.manager.CurrentUser(r.Context(), c.Value)
	if err != nil {
		if errors.Is(err, common.ErrSessionMissing) || errors.Is(err, common.ErrAuthFailed) {
			http.Redirect(w, r, "/login.html", http.StatusSeeOther)
			return users.User{}, false
		}
		s.serverError(w, r, err)
		return users.User{}, false
	}
	return u, true
}

func (s *Server) myFiles(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	entries, err := s.store.List(u.Name)
	if err != nil {
		s.coreError(w, r, err)
		return
	}

	s.renderPage(w, r, "myfiles.html", render.PageData{Name: u.Name, Files: entries}, http.StatusOK)
}

// upload streams a multipart file into the user's namespace. The user is
// resolved (and copied) before any disk I/O begins, so the usermanager
// mutex is never held across the write.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expected a multipart upload", http.StatusBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if err != nil {
			http.Error(w, "no file in upload", http.StatusBadRequest)
			return
		}
		if part.FormName() != "file" {
			continue
		}

		// browsers may send a full client-side path; keep the last element
		name := filepath.Base(part.FileName())

		if err := s.store.Save(u.Name, part, name); err != nil {
			s.coreError(w, r, err)
			return
		}
		break
	}

	http.Redirect(w, r, "/myfiles.html", http.StatusSeeOther)
}

func (s *Server) openFile(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]

	f, info, err := s.store.Open(u.Name, name)
	if err != nil {
		s.coreError(w, r, err)
		return
	}
	defer f.Close()

	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]

	if err := s.store.Remove(u.Name, name); err != nil {
		s.coreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/myfiles.html", http.StatusSeeOther)
}

// renderPage writes a rendered template, falling back to a bare 500 if the
// template itself cannot be produced.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data render.PageData, status int) {
	body, err := s.renderer.Page(page, data)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// coreError maps core error kinds onto HTTP statuses.
func (s *Server) coreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidFilename):
		http.Error(w, "invalid file name", http.StatusBadRequest)
	case errors.Is(err, common.ErrFileMissing):
		http.Error(w, "file not found", http.StatusNotFound)
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "internal error", "error", err, "path", r.URL.Path)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
