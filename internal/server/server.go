package server

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"articledash/internal/controller"
	"articledash/internal/model"
	"articledash/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var assets embed.FS

const cookieName = "articledash"

type Config struct {
	SessionSecret string
	SecureCookie  bool
	// CookieMaxAge should match the session store TTL.
	CookieMaxAge time.Duration
	// StatusTTL sets how long list and detail pages wait before reloading
	// while a status message is shown.
	StatusTTL time.Duration
	// CanImport shows the import-from-URL box on the create form.
	CanImport bool
}

type Server struct {
	registry *session.Registry
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
	cookies  *sessions.CookieStore
	pages    map[model.ViewMode]*template.Template
	cfg      Config
}

func NewServer(reg *session.Registry, cfg Config, logger *zap.Logger) (*Server, error) {
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = controller.DefaultStatusTTL
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = 7 * 24 * time.Hour
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		registry: reg,
		logger:   logger,
		router:   mux.NewRouter(),
		cookies:  newCookieStore(cfg),
		pages:    pages,
		cfg:      cfg,
	}
	s.routes()
	return s, nil
}

func newCookieStore(cfg Config) *sessions.CookieStore {
	// Two keys: signing + encryption
	h := sha256.Sum256([]byte("auth:" + cfg.SessionSecret))
	e := sha256.Sum256([]byte("enc:" + cfg.SessionSecret))

	store := sessions.NewCookieStore(h[:], e[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func parsePages() (map[model.ViewMode]*template.Template, error) {
	files := map[model.ViewMode]string{
		model.ViewList:   "templates/list.html",
		model.ViewDetail: "templates/detail.html",
		model.ViewForm:   "templates/form.html",
		model.ViewEdit:   "templates/form.html",
	}
	pages := make(map[model.ViewMode]*template.Template, len(files))
	for view, file := range files {
		tmpl, err := template.ParseFS(assets, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[view] = tmpl
	}
	return pages, nil
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID, middleware.RealIP, s.logRequests, middleware.Recoverer)

	// Static Files (CSS)
	static, _ := fs.Sub(assets, "static")
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Dashboard
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/search", s.event(s.handleSearch)).Methods("POST")
	s.router.HandleFunc("/page/prev", s.event(s.handlePrev)).Methods("POST")
	s.router.HandleFunc("/page/next", s.event(s.handleNext)).Methods("POST")
	s.router.HandleFunc("/page/{n:[0-9]+}", s.event(s.handlePage)).Methods("POST")
	s.router.HandleFunc("/page-size", s.event(s.handlePageSize)).Methods("POST")
	s.router.HandleFunc("/back", s.event(s.handleBack)).Methods("POST")

	// Articles
	s.router.HandleFunc("/articles/new", s.event(s.handleNew)).Methods("POST")
	s.router.HandleFunc("/articles/{id:[0-9]+}/view", s.event(s.handleView)).Methods("POST")
	s.router.HandleFunc("/articles/{id:[0-9]+}/edit", s.event(s.handleEdit)).Methods("POST")
	s.router.HandleFunc("/articles/{id:[0-9]+}/delete", s.event(s.handleDelete)).Methods("POST")
	s.router.HandleFunc("/articles/{id:[0-9]+}/delete/confirm", s.event(s.handleConfirmDelete)).Methods("POST")
	s.router.HandleFunc("/delete/cancel", s.event(s.handleCancelDelete)).Methods("POST")
	s.router.HandleFunc("/form", s.event(s.handleSubmit)).Methods("POST")
	s.router.HandleFunc("/form/import", s.event(s.handleImport)).Methods("POST")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
