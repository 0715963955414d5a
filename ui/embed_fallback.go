//go:build !ui_embed

package ui

import "net/http"

// Handler serves the frontend from staticRoot on disk, or redirects to the
// API docs when no build is present.
func Handler(staticRoot string) (http.Handler, error) {
	return diskOrDocs(staticRoot), nil
}
