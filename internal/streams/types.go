package streams

import (
	"context"
	"time"
)

// Service defines the stream operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context, sourceURL string) (*StartResult, error)
	Stop(ctx context.Context, streamID string) error
	List(ctx context.Context) []Stream
	Get(ctx context.Context, streamID string) (*Stream, error)
}

// StartResult is returned by a successful Start.
type StartResult struct {
	StreamID string
	HLSURL   string // /hls/<id>/index.m3u8
}

// Stream is a point-in-time view of one registered transcoder.
type Stream struct {
	ID        string    `json:"stream_id"`
	SourceURL string    `json:"source_url"`
	HLSURL    string    `json:"hls_url"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	// Exited is true when the transcoder died on its own and nobody has
	// stopped the stream yet.
	Exited bool `json:"exited"`
}

// Config is injected by main so tests can point at a stub binary.
type Config struct {
	TranscoderBin   string // ffmpeg
	OutputRoot      string // directory holding one subdirectory per stream
	Playlist        string // index.m3u8
	SegmentFilename string // optional pattern, e.g. seg_%05d.ts
	PublicPrefix    string // URL prefix the HLS files are served under
	ShutdownWorkers int    // parallelism of StopAll
}

func (c Config) withDefaults() Config {
	if c.TranscoderBin == "" {
		c.TranscoderBin = "ffmpeg"
	}
	if c.OutputRoot == "" {
		c.OutputRoot = "hls"
	}
	if c.Playlist == "" {
		c.Playlist = "index.m3u8"
	}
	if c.PublicPrefix == "" {
		c.PublicPrefix = "/hls"
	}
	if c.ShutdownWorkers <= 0 {
		c.ShutdownWorkers = 4
	}
	return c
}
