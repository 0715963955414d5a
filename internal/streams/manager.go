package streams

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/smazurov/hlsrelay/internal/events"
	"github.com/smazurov/hlsrelay/internal/ffmpeg"
	"github.com/smazurov/hlsrelay/internal/logging"
	"github.com/smazurov/hlsrelay/internal/process"
)

// Options contains optional collaborators for Manager. Nil fields get
// production defaults.
type Options struct {
	Spawner process.Spawner // default: ExecSpawner logging to module "transcoder"
	Tree    process.Tree    // default: process.SystemTree
	Bus     *events.Bus     // nil disables events
	Logger  *slog.Logger    // default: module "streams"
}

// streamMeta is what the registry does not know about a stream.
type streamMeta struct {
	sourceURL string
	hlsURL    string
}

// Manager starts and stops one transcoder per stream ID.
//
// Each stream moves Unstarted -> Running -> Stopped and never comes back;
// restarting a camera issues a fresh ID.
type Manager struct {
	cfg        Config
	spawner    process.Spawner
	terminator *process.Terminator
	registry   *process.Registry
	bus        *events.Bus
	logger     *slog.Logger

	metaMu sync.Mutex
	meta   map[string]streamMeta
}

var _ Service = (*Manager)(nil)

// NewManager creates a manager with an empty registry.
func NewManager(cfg Config, opts *Options) *Manager {
	if opts == nil {
		opts = &Options{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger("streams")
	}

	spawner := opts.Spawner
	if spawner == nil {
		spawner = process.NewExecSpawner(logging.GetLogger("process"), logging.GetLogger("transcoder"), ffmpeg.ParseLogLevel)
	}

	tree := opts.Tree
	if tree == nil {
		tree = process.SystemTree{}
	}

	return &Manager{
		cfg:        cfg.withDefaults(),
		spawner:    spawner,
		terminator: process.NewTerminator(tree, logging.GetLogger("process")),
		registry:   process.NewRegistry(),
		bus:        opts.Bus,
		logger:     logger,
		meta:       make(map[string]streamMeta),
	}
}

// Start spawns a transcoder pulling sourceURL and returns the new stream's
// ID and playlist path. Nothing is registered when the spawn fails.
func (m *Manager) Start(ctx context.Context, sourceURL string) (*StartResult, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, NewStreamError(ErrCodeInvalidRequest, "rtspUrl is required", nil)
	}

	id := uuid.NewString()
	dir := filepath.Join(m.cfg.OutputRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, m.startFailed(sourceURL, NewStreamError(ErrCodeSpawnFailure, "failed to create output directory", err))
	}

	args := ffmpeg.BuildHLSArgs(m.hlsParams(sourceURL, dir))
	m.logger.Debug("Spawning transcoder", "stream_id", id, "command", ffmpeg.CommandLine(m.cfg.TranscoderBin, args))

	h, err := m.spawner.Spawn(ctx, m.cfg.TranscoderBin, args)
	if err != nil {
		return nil, m.startFailed(sourceURL, NewStreamError(ErrCodeSpawnFailure, "failed to start transcoder", err))
	}

	hlsURL := m.playbackPath(id)
	m.metaMu.Lock()
	m.meta[id] = streamMeta{sourceURL: sourceURL, hlsURL: hlsURL}
	m.metaMu.Unlock()

	if err := m.registry.Register(id, h); err != nil {
		// Fresh UUIDs never collide; reaching this is a defect.
		m.terminator.Terminate(h)
		m.dropMeta(id)
		return nil, NewStreamError(ErrCodeAlreadyRegistered, "stream id already registered", err)
	}

	m.logger.Info("Stream started", "stream_id", id, "pid", h.PID(), "source", sourceURL)
	m.publish(events.StreamStartedEvent{
		StreamID:  id,
		SourceURL: sourceURL,
		HLSURL:    hlsURL,
		PID:       h.PID(),
		Timestamp: timestamp(),
	})

	return &StartResult{StreamID: id, HLSURL: hlsURL}, nil
}

// Stop terminates the stream's process tree and forgets it. Unknown IDs
// succeed. Concurrent calls for one ID terminate once and all return after
// the entry is gone.
func (m *Manager) Stop(_ context.Context, streamID string) error {
	if strings.TrimSpace(streamID) == "" {
		return NewStreamError(ErrCodeInvalidRequest, "streamId is required", nil)
	}

	h, ok := m.registry.Lookup(streamID)
	if !ok {
		m.logger.Debug("Stop for unknown stream", "stream_id", streamID)
		return nil
	}

	h.StopOnce(func() {
		exited := h.Exited()
		m.terminator.Terminate(h)
		m.registry.Unregister(streamID)
		m.dropMeta(streamID)

		m.logger.Info("Stream stopped", "stream_id", streamID, "pid", h.PID(), "already_exited", exited)
		m.publish(events.StreamStoppedEvent{
			StreamID:  streamID,
			Exited:    exited,
			Timestamp: timestamp(),
		})
	})
	return nil
}

// StopAll stops every registered stream, fanning out over a bounded worker
// pool. Used on shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	ids := make([]string, 0, m.registry.Len())
	for id := range m.registry.Snapshot() {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return
	}
	m.logger.Info("Stopping all streams", "count", len(ids))

	pool, err := ants.NewPool(m.cfg.ShutdownWorkers)
	if err != nil {
		m.logger.Warn("Worker pool unavailable, stopping sequentially", "error", err)
		for _, id := range ids {
			_ = m.Stop(ctx, id)
		}
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			_ = m.Stop(ctx, id)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	m.logger.Info("All streams stopped")
}

// List returns every registered stream, oldest first.
func (m *Manager) List(_ context.Context) []Stream {
	snapshot := m.registry.Snapshot()
	out := make([]Stream, 0, len(snapshot))
	for id, h := range snapshot {
		out = append(out, m.view(id, h))
	}
	slices.SortFunc(out, func(a, b Stream) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Get returns one registered stream.
func (m *Manager) Get(_ context.Context, streamID string) (*Stream, error) {
	h, ok := m.registry.Lookup(streamID)
	if !ok {
		return nil, NewStreamError(ErrCodeNotFound, "stream not found", nil)
	}
	s := m.view(streamID, h)
	return &s, nil
}

// Len returns the number of registered streams.
func (m *Manager) Len() int {
	return m.registry.Len()
}

// Command renders the transcoder invocation Start would use for sourceURL.
// An empty streamID is replaced by a fresh one.
func (m *Manager) Command(sourceURL, streamID string) (string, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return "", NewStreamError(ErrCodeInvalidRequest, "rtspUrl is required", nil)
	}
	if streamID == "" {
		streamID = uuid.NewString()
	}
	dir := filepath.Join(m.cfg.OutputRoot, streamID)
	return ffmpeg.CommandLine(m.cfg.TranscoderBin, ffmpeg.BuildHLSArgs(m.hlsParams(sourceURL, dir))), nil
}

func (m *Manager) hlsParams(sourceURL, dir string) ffmpeg.HLSParams {
	return ffmpeg.HLSParams{
		SourceURL:       sourceURL,
		OutputDir:       dir,
		Playlist:        m.cfg.Playlist,
		SegmentFilename: m.cfg.SegmentFilename,
	}
}

func (m *Manager) playbackPath(id string) string {
	return path.Join("/", m.cfg.PublicPrefix, id, m.cfg.Playlist)
}

func (m *Manager) view(id string, h *process.Handle) Stream {
	m.metaMu.Lock()
	md := m.meta[id]
	m.metaMu.Unlock()

	hlsURL := md.hlsURL
	if hlsURL == "" {
		hlsURL = m.playbackPath(id)
	}
	return Stream{
		ID:        id,
		SourceURL: md.sourceURL,
		HLSURL:    hlsURL,
		PID:       h.PID(),
		StartedAt: h.StartedAt(),
		Exited:    h.Exited(),
	}
}

func (m *Manager) dropMeta(id string) {
	m.metaMu.Lock()
	delete(m.meta, id)
	m.metaMu.Unlock()
}

func (m *Manager) startFailed(sourceURL string, err *StreamError) error {
	m.logger.Error("Failed to start stream", "source", sourceURL, "error", err)
	m.publish(events.StreamStartFailedEvent{
		SourceURL: sourceURL,
		Error:     err.Error(),
		Timestamp: timestamp(),
	})
	return err
}

func (m *Manager) publish(ev events.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
