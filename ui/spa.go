// Package ui serves the overlay editor frontend.
package ui

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// spaHandler serves fsys, falling back to index.html for extensionless
// paths so client-side routes resolve.
func spaHandler(fsys fs.FS) http.Handler {
	fileServer := http.FileServerFS(fsys)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean(r.URL.Path)

		f, err := fsys.Open(strings.TrimPrefix(p, "/"))
		if err == nil {
			stat, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !stat.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		}

		if !strings.Contains(path.Base(p), ".") {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/"
			fileServer.ServeHTTP(w, r2)
			return
		}
		http.NotFound(w, r)
	})
}

// diskOrDocs serves staticRoot when it is a directory holding index.html,
// and otherwise redirects to the API docs.
func diskOrDocs(staticRoot string) http.Handler {
	if staticRoot != "" {
		fsys := os.DirFS(staticRoot)
		if _, err := fs.Stat(fsys, "index.html"); err == nil {
			return spaHandler(fsys)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusFound)
	})
}
