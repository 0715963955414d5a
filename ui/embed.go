//go:build ui_embed

package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

// Build with: go build -tags ui_embed .
// Requires the frontend build output in ui/dist.

//go:embed all:dist
var distFS embed.FS

// Handler serves the embedded frontend. staticRoot is only used when the
// embedded build is empty.
func Handler(staticRoot string) (http.Handler, error) {
	fsys, err := fs.Sub(distFS, "dist")
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(fsys, "index.html"); err != nil {
		return diskOrDocs(staticRoot), nil
	}
	return spaHandler(fsys), nil
}
