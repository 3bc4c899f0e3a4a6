// Package server routes the gallery page, its assets and the image
// renditions
package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/recera/zoom/cmd/zoom/internal/assets"
	"github.com/recera/zoom/cmd/zoom/internal/gallery"
	"github.com/recera/zoom/cmd/zoom/internal/page"
	"github.com/recera/zoom/pkg/live"
	"github.com/recera/zoom/pkg/zoom"
)

// LivePath is where pages connect for reload notifications
const LivePath = "/__zoom/live"

const requestTimeout = 15 * time.Second

// Config wires the handler to its collaborators
type Config struct {
	Title   string
	Options zoom.Options
	Gallery *gallery.Gallery

	// OutDir holds zoom.wasm and, optionally, wasm_exec.js
	OutDir   string
	Compiler string

	// Live enables the reload endpoint and script. Nil outside dev.
	Live *live.Hub

	Logger *zap.Logger
}

// Server is the http.Handler for the gallery
type Server struct {
	cfg    Config
	log    *zap.Logger
	router chi.Router
}

// New builds the router
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// The reload socket outlives any request timeout
	if cfg.Live != nil {
		r.Handle(LivePath, cfg.Live)
	}

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(s.log))
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/", s.home)
		r.Get("/assets/zoom.css", static("text/css; charset=utf-8", assets.ZoomCSS))
		r.Get("/assets/bootstrap.js", static("application/javascript", assets.BootstrapJS))
		if cfg.Live != nil {
			r.Get("/assets/livereload.js", static("application/javascript", assets.LiveReloadJS))
		}
		r.Get("/assets/wasm_exec.js", s.wasmExec)
		r.Get("/assets/zoom.wasm", s.wasm)
		r.Get("/images/display/{id}", s.display)
		r.Get("/images/original/{id}", s.original)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	var images []gallery.Image
	if s.cfg.Gallery != nil {
		images = s.cfg.Gallery.Images()
	}
	render(w, r, page.Page(page.Data{
		Title:      s.cfg.Title,
		Images:     images,
		Options:    s.cfg.Options,
		LiveReload: s.cfg.Live != nil,
	}))
}

func (s *Server) display(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Gallery == nil {
		http.NotFound(w, r)
		return
	}
	id := chi.URLParam(r, "id")
	data, contentType, err := s.cfg.Gallery.Display(id)
	if errors.Is(err, gallery.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("Display rendition failed", zap.String("id", id), zap.Error(err))
		http.Error(w, "failed to render image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(data)
}

func (s *Server) original(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Gallery == nil {
		http.NotFound(w, r)
		return
	}
	img, ok := s.cfg.Gallery.Lookup(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	http.ServeFile(w, r, img.Path)
}

func (s *Server) wasm(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.OutDir, "zoom.wasm")
	if _, err := os.Stat(path); err != nil {
		s.log.Warn("zoom.wasm not built", zap.String("path", path))
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/wasm")
	http.ServeFile(w, r, path)
}

// wasmExec prefers the copy written by the build and falls back to the
// toolchain's own
func (s *Server) wasmExec(w http.ResponseWriter, r *http.Request) {
	content, err := os.ReadFile(filepath.Join(s.cfg.OutDir, "wasm_exec.js"))
	if err != nil {
		content, err = assets.WasmExecJS(s.cfg.Compiler)
	}
	if err != nil {
		s.log.Error("wasm_exec.js unavailable", zap.Error(err))
		http.Error(w, "wasm_exec.js unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(content)
}

func static(contentType string, content []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(content)
	}
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("Request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
