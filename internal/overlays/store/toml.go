package store

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/hlsrelay/internal/overlays"
)

// file represents the complete overlays file for TOML marshaling.
type file struct {
	Version  int               `toml:"version"`
	Overlays map[string]record `toml:"overlays"`
}

// record is one overlay. The JSON body is kept verbatim because overlay
// documents are free-form and may hold values TOML cannot express (null).
type record struct {
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
	UpdatedAt time.Time `toml:"updated_at"`
	Document  string    `toml:"document,multiline"`
}

// TOMLStore implements overlays.Store on a single TOML file.
type TOMLStore struct {
	path string

	mu   sync.RWMutex
	data *file
}

var _ overlays.Store = (*TOMLStore)(nil)

// NewTOML opens (or prepares to create) the overlays file at path.
func NewTOML(path string) (*TOMLStore, error) {
	if path == "" {
		path = "overlays.toml"
	}

	s := &TOMLStore{
		path: path,
		data: &file{
			Version:  1,
			Overlays: make(map[string]record),
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TOMLStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read overlays file: %w", err)
	}

	if err := toml.Unmarshal(data, s.data); err != nil {
		return fmt.Errorf("failed to parse overlays file: %w", err)
	}
	if s.data.Overlays == nil {
		s.data.Overlays = make(map[string]record)
	}
	if s.data.Version == 0 {
		s.data.Version = 1
	}
	return nil
}

// save writes the file atomically. Caller must hold the write lock.
func (s *TOMLStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create overlays directory: %w", err)
	}

	data, err := toml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to marshal overlays: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write overlays: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write overlays: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace overlays file: %w", err)
	}
	return nil
}

// List returns all documents, newest first.
func (s *TOMLStore) List(_ context.Context) ([]overlays.Document, error) {
	s.mu.RLock()
	docs := make([]overlays.Document, 0, len(s.data.Overlays))
	for id, rec := range s.data.Overlays {
		docs = append(docs, toDocument(id, rec))
	}
	s.mu.RUnlock()

	slices.SortFunc(docs, func(a, b overlays.Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return docs, nil
}

// Create stores body under a new time-ordered UUID.
func (s *TOMLStore) Create(_ context.Context, body []byte) (*overlays.Document, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	doc := &overlays.Document{ID: id.String(), Body: body, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Overlays[doc.ID] = toRecord(doc)
	if err := s.save(); err != nil {
		delete(s.data.Overlays, doc.ID)
		return nil, err
	}
	return doc, nil
}

// Get returns one document.
func (s *TOMLStore) Get(_ context.Context, id string) (*overlays.Document, error) {
	key, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, ok := s.data.Overlays[key]
	s.mu.RUnlock()
	if !ok {
		return nil, overlays.ErrNotFound
	}

	doc := toDocument(key, rec)
	return &doc, nil
}

// Update merges patch into the stored document.
func (s *TOMLStore) Update(_ context.Context, id string, patch []byte) (*overlays.Document, error) {
	key, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data.Overlays[key]
	if !ok {
		return nil, overlays.ErrNotFound
	}

	merged, err := overlays.MergeFields([]byte(prev.Document), patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge overlay: %w", err)
	}

	doc := toDocument(key, prev)
	doc.Body = merged
	doc.UpdatedAt = time.Now().UTC()

	s.data.Overlays[key] = toRecord(&doc)
	if err := s.save(); err != nil {
		s.data.Overlays[key] = prev
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document and reports whether it existed.
func (s *TOMLStore) Delete(_ context.Context, id string) (bool, error) {
	key, err := parseUUID(id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data.Overlays[key]
	if !ok {
		return false, nil
	}

	delete(s.data.Overlays, key)
	if err := s.save(); err != nil {
		s.data.Overlays[key] = prev
		return false, err
	}
	return true, nil
}

// Ping checks that the file's directory is reachable.
func (s *TOMLStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *TOMLStore) Close(_ context.Context) error {
	return nil
}

// parseUUID accepts any form uuid.Parse does and returns the canonical key.
func parseUUID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", overlays.ErrInvalidID
	}
	return u.String(), nil
}

func toRecord(doc *overlays.Document) record {
	return record{
		Name:      doc.Name(),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Document:  string(doc.Body),
	}
}

func toDocument(id string, rec record) overlays.Document {
	return overlays.Document{
		ID:        id,
		Body:      []byte(rec.Document),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
