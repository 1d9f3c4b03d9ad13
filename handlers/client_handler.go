package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// NotFound answers unmatched API routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	jsonResponseWithStatus(ErrorResponse{Message: fmt.Sprintf("Not Found - %s", r.URL.Path)}, http.StatusNotFound, w)
}

// ClientHandler serves the browser client. In production it serves the built
// bundle from distDir and falls back to index.html for client side routes;
// otherwise the root path only reports that the API is up.
type ClientHandler struct {
	production bool
	distDir    string
	files      http.Handler
}

func NewClientHandler(production bool, distDir string) *ClientHandler {
	return &ClientHandler{
		production: production,
		distDir:    distDir,
		files:      http.FileServer(http.Dir(distDir)),
	}
}

func (handler *ClientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		NotFound(w, r)
		return
	}
	if !handler.production {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("API is running..."))
			return
		}
		NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		NotFound(w, r)
		return
	}

	name := filepath.Join(handler.distDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		handler.files.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(handler.distDir, "index.html"))
}

// HealthHandler reports liveness and whether the database answers.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (handler *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := handler.ping(ctx); err != nil {
		jsonResponseWithStatus(map[string]string{"status": "unavailable", "database": err.Error()}, http.StatusServiceUnavailable, w)
		return
	}
	jsonResponse(map[string]string{"status": "ok"}, w)
}
