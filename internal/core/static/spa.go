// Package static serves the public web application with a single-page fallback.
package static

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mohammed-shakir/busdata-gateway/internal/core/observability"
)

const routeLabel = "/*"

// SPA serves files under Dir. Any path that does not resolve to a file is
// answered with Index (relative to Dir) and status 200.
type SPA struct {
	root   http.FileSystem
	files  http.Handler
	index  string
	logger *slog.Logger
}

func NewSPA(logger *slog.Logger, dir, index string) *SPA {
	if index == "" {
		index = "index.html"
	}
	root := http.Dir(dir)
	return &SPA{
		root:   root,
		files:  http.FileServer(root),
		index:  "/" + strings.TrimLeft(index, "/"),
		logger: logger,
	}
}

func (s *SPA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	defer func() {
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.ObserveHTTP(r.Method, routeLabel, status, time.Since(start).Seconds())
	}()

	p := path.Clean("/" + r.URL.Path)
	if !s.exists(p) {
		s.serveFile(ww, r, s.index, true)
		return
	}
	// http.FileServer redirects any path ending in /index.html to ./
	if path.Base(p) == "index.html" {
		s.serveFile(ww, r, p, false)
		return
	}
	s.files.ServeHTTP(ww, r)
}

// exists reports whether p names a regular file, or a directory holding one
// named index.html. Dot segments are treated as missing.
func (s *SPA) exists(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}

	fi, err := s.stat(p)
	if err != nil {
		return false
	}
	if !fi.IsDir() {
		return true
	}
	fi, err = s.stat(path.Join(p, "index.html"))
	return err == nil && !fi.IsDir()
}

func (s *SPA) stat(p string) (fs.FileInfo, error) {
	f, err := s.root.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.Stat()
}

// serveFile writes name with ServeContent, which never redirects.
// entry marks the fallback file, whose absence is logged.
func (s *SPA) serveFile(w http.ResponseWriter, r *http.Request, name string, entry bool) {
	f, err := s.root.Open(name)
	if err != nil {
		switch {
		case !errors.Is(err, fs.ErrNotExist):
			s.logger.ErrorContext(r.Context(), "open static file", "file", name, "err", err)
		case entry:
			s.logger.WarnContext(r.Context(), "entry file missing", "file", name)
		}
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		s.logger.WarnContext(r.Context(), "not a regular file", "file", name)
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
