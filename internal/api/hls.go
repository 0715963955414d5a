package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// hlsContentTypes covers what the transcoder writes; anything else falls
// back to http.ServeContent sniffing.
var hlsContentTypes = map[string]string{
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/mp2t",
	".m4s":  "video/iso.segment",
	".mp4":  "video/mp4",
}

// HLSHandler serves <root>/<streamId>/<file>. Every lookup goes through an
// os.Root opened on the stream's directory, so paths cannot escape it.
type HLSHandler struct {
	root   string
	logger *slog.Logger
}

// NewHLSHandler serves files under root.
func NewHLSHandler(root string, logger *slog.Logger) *HLSHandler {
	return &HLSHandler{root: root, logger: logger}
}

// Pattern returns the ServeMux pattern for route (e.g. "/hls").
func (h *HLSHandler) Pattern(route string) string {
	return "GET " + path.Join("/", route) + "/{streamId}/{file...}"
}

func (h *HLSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	streamID := r.PathValue("streamId")
	name := r.PathValue("file")
	if !filepath.IsLocal(streamID) || streamID != filepath.Base(streamID) || name == "" {
		http.NotFound(w, r)
		return
	}

	root, err := os.OpenRoot(filepath.Join(h.root, streamID))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Debug("Rejected HLS path", "stream_id", streamID, "file", name, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	ext := path.Ext(name)
	if ct, ok := hlsContentTypes[ext]; ok {
		w.Header().Set("Content-Type", ct)
	}
	if ext == ".m3u8" {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
