package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/hlsrelay/internal/api/models"
	"github.com/smazurov/hlsrelay/internal/overlays"
)

const jsonContentType = "application/json"

// registerOverlayRoutes registers overlay document CRUD.
func (s *Server) registerOverlayRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-overlays",
		Method:      http.MethodGet,
		Path:        "/api/overlays",
		Summary:     "List Overlays",
		Description: "List overlay documents, newest first",
		Tags:        []string{"overlays"},
		Errors:      []int{500},
	}, func(ctx context.Context, _ *struct{}) (*models.JSONResponse, error) {
		docs, err := s.overlays.List(ctx)
		if err != nil {
			return nil, s.overlayError("Failed to list overlays", err)
		}
		return rawJSON(overlays.RenderList(docs)), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-overlay",
		Method:        http.MethodPost,
		Path:          "/api/overlays",
		Summary:       "Create Overlay",
		Description:   "Store a new overlay document. name is required; elements defaults to an empty array.",
		Tags:          []string{"overlays"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{400, 500},
	}, func(ctx context.Context, input *models.CreateOverlayRequest) (*models.JSONResponse, error) {
		doc, err := s.overlays.Create(ctx, input.RawBody)
		if err != nil {
			return nil, s.overlayError("Failed to create overlay", err)
		}
		return rawJSON(doc.JSON()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-overlay",
		Method:      http.MethodGet,
		Path:        "/api/overlays/{id}",
		Summary:     "Get Overlay",
		Tags:        []string{"overlays"},
		Errors:      []int{400, 404, 500},
	}, func(ctx context.Context, input *models.OverlayIDInput) (*models.JSONResponse, error) {
		doc, err := s.overlays.Get(ctx, input.ID)
		if err != nil {
			return nil, s.overlayError("Failed to get overlay", err)
		}
		return rawJSON(doc.JSON()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-overlay",
		Method:      http.MethodPut,
		Path:        "/api/overlays/{id}",
		Summary:     "Update Overlay",
		Description: "Replace the top-level fields present in the body; other fields are kept. _id is ignored.",
		Tags:        []string{"overlays"},
		Errors:      []int{400, 404, 500},
	}, func(ctx context.Context, input *models.UpdateOverlayRequest) (*models.JSONResponse, error) {
		doc, err := s.overlays.Update(ctx, input.ID, input.RawBody)
		if err != nil {
			return nil, s.overlayError("Failed to update overlay", err)
		}
		return rawJSON(doc.JSON()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-overlay",
		Method:      http.MethodDelete,
		Path:        "/api/overlays/{id}",
		Summary:     "Delete Overlay",
		Tags:        []string{"overlays"},
		Errors:      []int{400, 500},
	}, func(ctx context.Context, input *models.OverlayIDInput) (*models.DeleteOverlayResponse, error) {
		deleted, err := s.overlays.Delete(ctx, input.ID)
		if err != nil {
			return nil, s.overlayError("Failed to delete overlay", err)
		}
		return &models.DeleteOverlayResponse{Body: models.DeleteOverlayResult{Deleted: deleted}}, nil
	})
}

func (s *Server) overlayError(msg string, err error) error {
	mapped := mapOverlayError(err)
	if se, ok := mapped.(huma.StatusError); ok && se.GetStatus() >= http.StatusInternalServerError {
		s.logger.Error(msg, "error", err)
	}
	return mapped
}

func rawJSON(body []byte) *models.JSONResponse {
	return &models.JSONResponse{ContentType: jsonContentType, Body: body}
}
