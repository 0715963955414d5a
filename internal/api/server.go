package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/hlsrelay/internal/api/models"
	"github.com/smazurov/hlsrelay/internal/events"
	"github.com/smazurov/hlsrelay/internal/logging"
	"github.com/smazurov/hlsrelay/internal/overlays"
	"github.com/smazurov/hlsrelay/internal/streams"
	"github.com/smazurov/hlsrelay/internal/version"
)

// Probes serves liveness and readiness.
type Probes interface {
	Live(w http.ResponseWriter, r *http.Request)
	Ready(w http.ResponseWriter, r *http.Request)
}

// Options configures the API server.
type Options struct {
	Streams  streams.Service
	Overlays *overlays.Service
	EventBus *events.Bus

	HLSRoot    string // directory holding one subdirectory per stream
	HLSRoute   string // URL prefix, default /hls
	CORSOrigin string

	MetricsHandler http.Handler // optional, mounted at /metrics
	Probes         Probes       // optional, mounted at /live and /ready
	StaticHandler  http.Handler // optional, mounted at /

	// OnListening runs once the listener is bound, before serving.
	OnListening func(addr net.Addr)
}

// Server is the HTTP API.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	streams    streams.Service
	overlays   *overlays.Service
	eventBus   *events.Bus
	onListen   func(addr net.Addr)
	logger     *slog.Logger
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig(opts.CORSOrigin)
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("HLS Relay API", version.Version)
	config.Info.Description = "RTSP to HLS transcoder lifecycle and overlay documents"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}
	// No $schema links in responses
	config.CreateHooks = nil

	api := humago.New(mux, config)

	bus := opts.EventBus
	if bus == nil {
		bus = events.New()
	}

	server := &Server{
		api:      api,
		mux:      mux,
		streams:  opts.Streams,
		overlays: opts.Overlays,
		eventBus: bus,
		onListen: opts.OnListening,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	if opts.Probes != nil {
		mux.HandleFunc("GET /live", opts.Probes.Live)
		mux.HandleFunc("GET /ready", opts.Probes.Ready)
	}

	route := opts.HLSRoute
	if route == "" {
		route = "/hls"
	}
	hls := NewHLSHandler(opts.HLSRoot, logging.GetLogger("http"))
	mux.Handle(hls.Pattern(route), WithCORS(corsConfig, hls))

	server.registerRoutes()

	if opts.StaticHandler != nil {
		static := opts.StaticHandler
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api") {
				http.NotFound(w, r)
				return
			}
			static.ServeHTTP(w, r)
		})
	}

	return server
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting HLS relay API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if s.onListen != nil {
		s.onListen(ln.Addr())
	}
	return s.httpServer.Serve(ln)
}

// Stop closes the listener and all connections, SSE streams included.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Report that the API is serving",
		Tags:        []string{"health"},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{Body: models.HealthData{OK: true}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	if s.streams != nil {
		s.registerStreamRoutes()
	}
	if s.overlays != nil {
		s.registerOverlayRoutes()
	}
	s.registerSSERoutes()
}

func (s *Server) logError(msg string, err error, args ...any) {
	if streams.ErrorCode(err) == streams.ErrCodeInvalidRequest {
		return
	}
	s.logger.Error(msg, append([]any{"error", err}, args...)...)
}
