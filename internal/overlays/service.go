package overlays

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/hlsrelay/internal/events"
)

// Service validates overlay requests and delegates persistence to a Store.
type Service struct {
	store  Store
	bus    *events.Bus
	logger *slog.Logger
}

// NewService creates a Service. bus may be nil.
func NewService(store Store, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{store: store, bus: bus, logger: logger}
}

// List returns all overlays, newest first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list overlays: %w", err)
	}
	return docs, nil
}

// Create validates raw and stores it as a new overlay.
func (s *Service) Create(ctx context.Context, raw []byte) (*Document, error) {
	body, err := PrepareCreate(raw)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Create(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("create overlay: %w", err)
	}

	s.logger.Info("Overlay created", "id", doc.ID, "name", doc.Name())
	s.publish(doc.ID, events.OverlayCreated)
	return doc, nil
}

// Get returns one overlay.
func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	return s.store.Get(ctx, id)
}

// Update merges the top-level fields of raw into the overlay.
func (s *Service) Update(ctx context.Context, id string, raw []byte) (*Document, error) {
	patch, err := PreparePatch(raw)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Overlay updated", "id", doc.ID, "fields", Fields(patch))
	s.publish(doc.ID, events.OverlayUpdated)
	return doc, nil
}

// Delete removes an overlay. Deleting an absent overlay is not an error.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("Overlay deleted", "id", id)
		s.publish(id, events.OverlayDeleted)
	}
	return deleted, nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) publish(id, action string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.OverlayChangedEvent{
		OverlayID: id,
		Action:    action,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
