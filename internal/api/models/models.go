// Package models holds the request and response shapes of the HTTP API.
package models

import (
	"time"

	"github.com/smazurov/hlsrelay/internal/version"
)

// HealthData is the body of GET /api/health.
type HealthData struct {
	OK bool `json:"ok" example:"true" doc:"Always true while the process serves requests"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionResponse struct {
	Body version.Info
}

// ConnectedEvent is the first message on every SSE connection.
type ConnectedEvent struct {
	Message   string `json:"message" example:"connected" doc:"Connection notice"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Server time"`
}

// Stream models

type StartStreamData struct {
	RTSPURL string `json:"rtspUrl,omitempty" example:"rtsp://camera.local/stream1" doc:"RTSP source to transcode"`
}

type StartStreamRequest struct {
	Body *StartStreamData `required:"false"`
}

type StartStreamResult struct {
	StreamID string `json:"streamId" example:"0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21" doc:"Stream identifier"`
	HLSURL   string `json:"hlsUrl" example:"/hls/0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21/index.m3u8" doc:"Playlist path"`
}

type StartStreamResponse struct {
	Body StartStreamResult
}

type StopStreamData struct {
	StreamID string `json:"streamId,omitempty" example:"0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21" doc:"Stream identifier"`
}

type StopStreamRequest struct {
	Body *StopStreamData `required:"false"`
}

type StopStreamResult struct {
	Stopped bool `json:"stopped" example:"true" doc:"Always true; stopping an unknown stream is not an error"`
}

type StopStreamResponse struct {
	Body StopStreamResult
}

type StreamData struct {
	StreamID  string    `json:"streamId" example:"0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21" doc:"Stream identifier"`
	SourceURL string    `json:"rtspUrl" example:"rtsp://camera.local/stream1" doc:"RTSP source"`
	HLSURL    string    `json:"hlsUrl" example:"/hls/0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21/index.m3u8" doc:"Playlist path"`
	PID       int       `json:"pid" example:"4242" doc:"Transcoder process ID"`
	StartedAt time.Time `json:"startedAt" doc:"When the transcoder was spawned"`
	Uptime    float64   `json:"uptimeSeconds" example:"3600" doc:"Seconds since spawn"`
	Exited    bool      `json:"exited" example:"false" doc:"Transcoder exited on its own; stop the stream to clean up"`
}

type StreamListData struct {
	Streams []StreamData `json:"streams" doc:"Registered streams, oldest first"`
	Count   int          `json:"count" example:"2" doc:"Number of registered streams"`
}

type StreamListResponse struct {
	Body StreamListData
}

type StreamResponse struct {
	Body StreamData
}

type StreamIDInput struct {
	StreamID string `path:"streamId" example:"0b5f8c7e-2d1a-4c55-9a57-0c3f1e0d8a21" doc:"Stream identifier"`
}

// Overlay models. Overlay documents are free-form JSON, so bodies pass
// through as raw bytes.

type OverlayIDInput struct {
	ID string `path:"id" example:"01928f5e-7c1a-7b3e-9d2f-3a4b5c6d7e8f" doc:"Overlay identifier"`
}

type CreateOverlayRequest struct {
	RawBody []byte `contentType:"application/json"`
}

type UpdateOverlayRequest struct {
	ID      string `path:"id" example:"01928f5e-7c1a-7b3e-9d2f-3a4b5c6d7e8f" doc:"Overlay identifier"`
	RawBody []byte `contentType:"application/json"`
}

// JSONResponse carries a pre-rendered JSON body.
type JSONResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type DeleteOverlayResult struct {
	Deleted bool `json:"deleted" example:"true" doc:"Whether a document was removed"`
}

type DeleteOverlayResponse struct {
	Body DeleteOverlayResult
}
