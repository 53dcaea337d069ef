package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// WithSPA serves /api/ from apiHandler and everything else from webDir,
// falling back to index.html for client-side routes.
func WithSPA(apiHandler http.Handler, webDir string) http.Handler {
	return withSPAFS(apiHandler, os.DirFS(webDir))
}

func withSPAFS(apiHandler http.Handler, static fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(static))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && name != indexFile {
			if info, err := fs.Stat(static, name); err == nil && !info.IsDir() {
				w.Header().Set("Cache-Control", "no-store")
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		serveIndex(w, static)
	})
}

func serveIndex(w http.ResponseWriter, static fs.FS) {
	data, err := fs.ReadFile(static, indexFile)
	if errors.Is(err, fs.ErrNotExist) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("index.html not found"))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
