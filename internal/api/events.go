package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/hlsrelay/internal/api/models"
	"github.com/smazurov/hlsrelay/internal/events"
)

// eventTypes maps SSE event names to payload types.
var eventTypes = map[string]any{
	"connected":           models.ConnectedEvent{},
	"stream-started":      events.StreamStartedEvent{},
	"stream-stopped":      events.StreamStoppedEvent{},
	"stream-start-failed": events.StreamStartFailedEvent{},
	"overlay-changed":     events.OverlayChangedEvent{},
}

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream and overlay change notifications",
		Tags:        []string{"events"},
	}, eventTypes, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)
		unsubscribe := events.SubscribeAll(s.eventBus, eventCh)
		defer unsubscribe()

		if err := send.Data(models.ConnectedEvent{
			Message:   "connected",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
