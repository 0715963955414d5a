package events

// Event type constants for kelindar/event.
const (
	TypeStreamStarted uint32 = iota + 1
	TypeStreamStopped
	TypeStreamStartFailed
	TypeOverlayChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StreamStartedEvent is published once a transcoder is spawned and registered.
type StreamStartedEvent struct {
	StreamID  string `json:"stream_id" example:"0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21" doc:"Stream identifier"`
	SourceURL string `json:"source_url" example:"rtsp://camera.local/stream1" doc:"RTSP source"`
	HLSURL    string `json:"hls_url" example:"/hls/0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21/index.m3u8" doc:"Playlist path"`
	PID       int    `json:"pid" example:"4242" doc:"Transcoder process ID"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamStartedEvent.
func (e StreamStartedEvent) Type() uint32 { return TypeStreamStarted }

// StreamStoppedEvent is published after a stream's process tree was
// terminated and its registry entry removed.
type StreamStoppedEvent struct {
	StreamID  string `json:"stream_id" example:"0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21" doc:"Stream identifier"`
	Exited    bool   `json:"exited" example:"false" doc:"Whether the transcoder had already exited on its own"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamStoppedEvent.
func (e StreamStoppedEvent) Type() uint32 { return TypeStreamStopped }

// StreamStartFailedEvent is published when the transcoder could not be spawned.
type StreamStartFailedEvent struct {
	SourceURL string `json:"source_url" example:"rtsp://camera.local/stream1" doc:"RTSP source"`
	Error     string `json:"error" example:"exec: \"ffmpeg\": executable file not found in $PATH" doc:"Failure reason"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamStartFailedEvent.
func (e StreamStartFailedEvent) Type() uint32 { return TypeStreamStartFailed }

// Overlay change actions.
const (
	OverlayCreated = "created"
	OverlayUpdated = "updated"
	OverlayDeleted = "deleted"
)

// OverlayChangedEvent is published after an overlay document was written.
type OverlayChangedEvent struct {
	OverlayID string `json:"overlay_id" example:"01928f5e-7c1a-7b3e-9d2f-3a4b5c6d7e8f" doc:"Overlay identifier"`
	Action    string `json:"action" example:"created" enum:"created,updated,deleted" doc:"Action type"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for OverlayChangedEvent.
func (e OverlayChangedEvent) Type() uint32 { return TypeOverlayChanged }
