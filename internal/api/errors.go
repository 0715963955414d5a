package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/hlsrelay/internal/overlays"
	"github.com/smazurov/hlsrelay/internal/streams"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	status  int
	Message string   `json:"error" example:"rtspUrl is required" doc:"Human-readable error"`
	Details []string `json:"details,omitempty" doc:"Underlying causes"`
}

func (e *ErrorBody) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *ErrorBody) GetStatus() int {
	return e.status
}

func init() {
	huma.NewError = newError
}

func newError(status int, msg string, errs ...error) huma.StatusError {
	body := &ErrorBody{status: status, Message: msg}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			body.Details = append(body.Details, detailer.ErrorDetail().Error())
			continue
		}
		body.Details = append(body.Details, err.Error())
	}
	return body
}

// mapStreamError maps domain errors to HTTP errors
func mapStreamError(err error) error {
	var streamErr *streams.StreamError
	if !errors.As(err, &streamErr) {
		return huma.Error500InternalServerError("internal server error")
	}
	switch streamErr.Code {
	case streams.ErrCodeInvalidRequest:
		return huma.Error400BadRequest(streamErr.Message)
	case streams.ErrCodeNotFound:
		return huma.Error404NotFound(streamErr.Message)
	case streams.ErrCodeSpawnFailure:
		return huma.Error500InternalServerError(streamErr.Message, streamErr.Cause)
	default:
		return huma.Error500InternalServerError(streamErr.Message)
	}
}

// mapOverlayError maps overlay errors to HTTP errors. Messages are fixed so
// store internals do not leak to clients.
func mapOverlayError(err error) error {
	var verr *overlays.ValidationError
	switch {
	case errors.As(err, &verr):
		return huma.Error400BadRequest(verr.Message)
	case errors.Is(err, overlays.ErrInvalidID):
		return huma.Error400BadRequest("invalid id")
	case errors.Is(err, overlays.ErrNotFound):
		return huma.Error404NotFound("not found")
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}
