package config

import "github.com/smazurov/hlsrelay/internal/logging"

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port       string `help:"Address to listen on" short:"p" default:":8000" toml:"server.port" env:"SERVER_PORT"`
	CORSOrigin string `help:"Origin allowed by CORS" default:"http://localhost:5173" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`

	// HLS output
	HLSRoot            string `help:"Directory holding one subdirectory per stream" default:"./hls" toml:"hls.root" env:"HLS_ROOT"`
	HLSRoute           string `help:"URL prefix HLS files are served under" default:"/hls" toml:"hls.route" env:"HLS_ROUTE"`
	HLSPlaylist        string `help:"Playlist file name" default:"index.m3u8" toml:"hls.playlist" env:"HLS_PLAYLIST"`
	HLSSegmentFilename string `help:"Segment file pattern, e.g. seg_%05d.ts (empty lets the transcoder choose)" default:"" toml:"hls.segment_filename" env:"HLS_SEGMENT_FILENAME"`

	// Transcoder
	TranscoderBin string `help:"Transcoder executable" default:"ffmpeg" toml:"transcoder.bin" env:"TRANSCODER_BIN"`

	// Frontend
	StaticRoot string `help:"Directory with the built frontend" default:"./static" toml:"static.root" env:"STATIC_ROOT"`

	// Overlay store
	StoreDriver   string `help:"Overlay store backend (toml, mongo)" default:"toml" toml:"store.driver" env:"STORE_DRIVER"`
	StoreFile     string `help:"Overlay file for the toml backend" default:"overlays.toml" toml:"store.file" env:"STORE_FILE"`
	MongoURI      string `help:"MongoDB connection string" default:"mongodb://localhost:27017" toml:"store.mongo_uri" env:"STORE_MONGO_URI"`
	MongoDatabase string `help:"MongoDB database" default:"rtsp_overlay_app" toml:"store.mongo_database" env:"STORE_MONGO_DATABASE"`

	// Shutdown
	ShutdownWorkers int `help:"Streams stopped in parallel on shutdown" default:"4" toml:"shutdown.workers" env:"SHUTDOWN_WORKERS"`

	// Observability
	MetricsEnabled bool `help:"Serve Prometheus metrics at /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingStreams    string `help:"Stream manager logging level" default:"" toml:"logging.streams" env:"LOGGING_STREAMS"`
	LoggingProcess    string `help:"Process spawn/kill logging level" default:"" toml:"logging.process" env:"LOGGING_PROCESS"`
	LoggingTranscoder string `help:"Transcoder output logging level" default:"" toml:"logging.transcoder" env:"LOGGING_TRANSCODER"`
	LoggingOverlays   string `help:"Overlay service logging level" default:"" toml:"logging.overlays" env:"LOGGING_OVERLAYS"`
	LoggingAPI        string `help:"API logging level" default:"" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP       string `help:"HTTP request logging level" default:"" toml:"logging.http" env:"LOGGING_HTTP"`
}

// Logging returns the logging configuration. Empty module levels inherit the
// global level.
func (o *Options) Logging() logging.Config {
	modules := map[string]string{
		"streams":    o.LoggingStreams,
		"process":    o.LoggingProcess,
		"transcoder": o.LoggingTranscoder,
		"overlays":   o.LoggingOverlays,
		"api":        o.LoggingAPI,
		"http":       o.LoggingHTTP,
	}
	for k, v := range modules {
		if v == "" {
			delete(modules, k)
		}
	}
	return logging.Config{
		Level:   o.LoggingLevel,
		Format:  o.LoggingFormat,
		Modules: modules,
	}
}
