// Package web serves the rendered calendar over HTTP: the HTML fragment
// wrapped in a minimal page shell, a PNG preview, and a health probe.
package web

import (
	"context"
	"crypto/subtle"
	_ "embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"calgrid/internal/config"
	appLog "calgrid/internal/log"
)

// RenderFunc produces the current calendar fragment. The server owns
// caching; implementations may be as expensive as a full fetch+render.
type RenderFunc func(ctx context.Context) (string, error)

//go:embed style.css
var styleCSS string

var pageTpl = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
{{.Calendar}}
</body>
</html>
`))

type pageData struct {
	Title    string
	CSS      template.CSS
	Calendar template.HTML
}

// renderCache holds the last rendered fragment and its timestamp.
type renderCache struct {
	html      string
	updatedAt time.Time
}

// Server exposes the rendered calendar. One Server handles concurrent
// requests; the render itself stays single-use per invocation, the cache
// just shares its output.
type Server struct {
	cfg         *config.Config
	render      RenderFunc
	previewPath string
	mux         *http.ServeMux

	cacheTTL time.Duration
	cacheMu  sync.RWMutex
	cache    *renderCache
}

// NewServer constructs a Server. previewPath is where the capture step
// writes its PNG; the /calendar.png handler serves it from disk.
func NewServer(cfg *config.Config, render RenderFunc, previewPath string) *Server {
	s := &Server{
		cfg:         cfg,
		render:      render,
		previewPath: previewPath,
		mux:         http.NewServeMux(),
		cacheTTL:    time.Minute,
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/calendar", s.handleCalendar)
	s.mux.HandleFunc("/calendar.png", s.handlePreview)
	return s
}

// Handler returns the HTTP handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Invalidate drops the cached fragment so the next request re-renders.
// The refresh schedule calls this after feeds change.
func (s *Server) Invalidate() {
	s.cacheMu.Lock()
	s.cache = nil
	s.cacheMu.Unlock()
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware protects everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgrid", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	fragment, err := s.cachedFragment(r.Context())
	if err != nil {
		appLog.Error("calendar render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTpl.Execute(w, pageData{
		Title:    "Calendar",
		CSS:      template.CSS(styleCSS),
		Calendar: template.HTML(fragment),
	})
	if err != nil {
		appLog.Error("calendar page write failed", err)
	}
}

// cachedFragment returns the cached fragment while fresh, re-rendering
// otherwise.
func (s *Server) cachedFragment(ctx context.Context) (string, error) {
	now := time.Now()

	s.cacheMu.RLock()
	c := s.cache
	s.cacheMu.RUnlock()
	if c != nil && now.Sub(c.updatedAt) < s.cacheTTL {
		return c.html, nil
	}

	fragment, err := s.render(ctx)
	if err != nil {
		return "", err
	}

	s.cacheMu.Lock()
	s.cache = &renderCache{html: fragment, updatedAt: time.Now()}
	s.cacheMu.Unlock()
	return fragment, nil
}

// handlePreview serves the last captured PNG from disk. http.ServeFile
// maps missing files and permission errors to proper status codes.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.previewPath)
}
