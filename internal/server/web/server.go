// Package web is the HTTP transport: routing, cookie handling, and the
// mapping from core errors to responses. It owns nothing but presentation;
// every decision about users, sessions, and files is delegated to
// usermanager and the file store.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filehost/internal/logging"
	"github.com/dmitrijs2005/filehost/internal/server/config"
	"github.com/dmitrijs2005/filehost/internal/server/files"
	"github.com/dmitrijs2005/filehost/internal/server/render"
	"github.com/dmitrijs2005/filehost/internal/server/usermanager"
	"github.com/gorilla/mux"
)

// sessionCookie is the cookie carrying the session token.
const sessionCookie = "session-id"

type Server struct {
	addr         string
	maxUpload    int64
	cookieSecure bool
	staticDir    string

	manager  *usermanager.Manager
	store    *files.Store
	renderer *render.Renderer
	logger   logging.Logger
}

// NewServer wires the transport to the core components.
func NewServer(cfg *config.Config, l logging.Logger, m *usermanager.Manager, st *files.Store, r *render.Renderer) *Server {
	return &Server{
		addr:         cfg.ListenAddr,
		maxUpload:    cfg.MaxUploadBytes,
		cookieSecure: cfg.CookieSecure,
		staticDir:    cfg.StaticDir,
		manager:      m,
		store:        st,
		renderer:     r,
		logger:       l.With("module", "web_server"),
	}
}

// Router builds the route table. Split out from Run so tests can drive the
// handlers through httptest without binding a socket.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/", s.index).Methods(http.MethodGet)
	r.HandleFunc("/index.html", s.index).Methods(http.MethodGet)

	r.HandleFunc("/signup.html", s.signupPage).Methods(http.MethodGet)
	r.HandleFunc("/signup.html", s.signupSubmit).Methods(http.MethodPost)

	r.HandleFunc("/login.html", s.loginPage).Methods(http.MethodGet)
	r.HandleFunc("/login.html", s.loginSubmit).Methods(http.MethodPost)

	r.HandleFunc("/myfiles.html", s.myFiles).Methods(http.MethodGet)
	r.HandleFunc("/myfiles.html", s.upload).Methods(http.MethodPost)
	r.HandleFunc("/myfiles.html/open/{name}", s.openFile).Methods(http.MethodGet)
	r.HandleFunc("/myfiles.html/delete/{name}", s.deleteFile).Methods(http.MethodPost)

	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))

	return r
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
