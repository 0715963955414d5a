package overlays

import "context"

// Store persists overlay documents. Implementations return ErrInvalidID for
// IDs they could never have issued and ErrNotFound for valid but absent ones.
type Store interface {
	// List returns every document, newest first.
	List(ctx context.Context) ([]Document, error)
	// Create stores body under a fresh ID.
	Create(ctx context.Context, body []byte) (*Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	// Update sets each top-level field of patch and returns the result.
	Update(ctx context.Context, id string, patch []byte) (*Document, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
