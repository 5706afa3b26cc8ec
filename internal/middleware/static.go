package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const placeholderSymbolSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f0f0f0"/><circle cx="100" cy="90" r="40" fill="none" stroke="#999" stroke-width="12"/><text x="100" y="170" text-anchor="middle" font-family="Arial" font-size="14" fill="#666">SYMBOL</text></svg>`

func resolve(dir, urlPath string) (string, bool) {
	path := filepath.Join(dir, filepath.Clean("/"+urlPath))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// StaticFileServer serves files from dir and answers 404 for anything else,
// directories included.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, ok := resolve(dir, r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "private, no-cache")
		http.ServeFile(w, r, path)
	})
}

// SymbolFileServer serves candidate symbols from dir, falling back to a
// placeholder image when the file is missing.
func SymbolFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path, ok := resolve(dir, r.URL.Path); ok {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(placeholderSymbolSVG))
	})
}
