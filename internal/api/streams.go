package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/hlsrelay/internal/api/models"
	"github.com/smazurov/hlsrelay/internal/streams"
)

// registerStreamRoutes registers all stream-related endpoints
func (s *Server) registerStreamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "start-stream",
		Method:        http.MethodPost,
		Path:          "/api/stream/start",
		Summary:       "Start Stream",
		Description:   "Spawn a transcoder that turns the RTSP source into an HLS playlist",
		Tags:          []string{"streams"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{400, 500},
	}, func(ctx context.Context, input *models.StartStreamRequest) (*models.StartStreamResponse, error) {
		var url string
		if input.Body != nil {
			url = input.Body.RTSPURL
		}

		res, err := s.streams.Start(ctx, url)
		if err != nil {
			s.logError("Failed to start stream", err, "rtsp_url", url)
			return nil, mapStreamError(err)
		}

		return &models.StartStreamResponse{
			Body: models.StartStreamResult{StreamID: res.StreamID, HLSURL: res.HLSURL},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-stream",
		Method:      http.MethodPost,
		Path:        "/api/stream/stop",
		Summary:     "Stop Stream",
		Description: "Terminate a stream's transcoder and every process it spawned. Unknown ids succeed.",
		Tags:        []string{"streams"},
		Errors:      []int{400},
	}, func(ctx context.Context, input *models.StopStreamRequest) (*models.StopStreamResponse, error) {
		var id string
		if input.Body != nil {
			id = input.Body.StreamID
		}

		if err := s.streams.Stop(ctx, id); err != nil {
			return nil, mapStreamError(err)
		}

		return &models.StopStreamResponse{Body: models.StopStreamResult{Stopped: true}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-streams",
		Method:      http.MethodGet,
		Path:        "/api/streams",
		Summary:     "List Streams",
		Description: "List registered streams, including ones whose transcoder has exited",
		Tags:        []string{"streams"},
	}, func(ctx context.Context, _ *struct{}) (*models.StreamListResponse, error) {
		list := s.streams.List(ctx)

		data := make([]models.StreamData, len(list))
		now := time.Now()
		for i, st := range list {
			data[i] = domainToAPIStream(st, now)
		}

		return &models.StreamListResponse{
			Body: models.StreamListData{Streams: data, Count: len(data)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream",
		Method:      http.MethodGet,
		Path:        "/api/streams/{streamId}",
		Summary:     "Get Stream",
		Description: "Get one registered stream",
		Tags:        []string{"streams"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *models.StreamIDInput) (*models.StreamResponse, error) {
		st, err := s.streams.Get(ctx, input.StreamID)
		if err != nil {
			return nil, mapStreamError(err)
		}
		return &models.StreamResponse{Body: domainToAPIStream(*st, time.Now())}, nil
	})
}

// domainToAPIStream converts a domain stream to API stream data
func domainToAPIStream(st streams.Stream, now time.Time) models.StreamData {
	return models.StreamData{
		StreamID:  st.ID,
		SourceURL: st.SourceURL,
		HLSURL:    st.HLSURL,
		PID:       st.PID,
		StartedAt: st.StartedAt,
		Uptime:    now.Sub(st.StartedAt).Round(time.Second).Seconds(),
		Exited:    st.Exited,
	}
}
