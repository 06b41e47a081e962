// Package memory provides an in-memory ResourceStore for tests and
// single-node deployments.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"solid-service/internal/identifier"
	"solid-service/internal/storage"
	apperrors "solid-service/pkg/errors"
)

type document struct {
	contentType string
	data        []byte
}

// Store keeps representations in a mutex-guarded map keyed by path.
type Store struct {
	mu        sync.RWMutex
	documents map[string]document
}

func NewStore() *Store {
	return &Store{documents: make(map[string]document)}
}

func (s *Store) GetRepresentation(_ context.Context, id identifier.ResourceIdentifier) (*storage.Representation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id.Path]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("no resource at %s", id.Path))
	}
	return &storage.Representation{
		Identifier:  id,
		ContentType: doc.contentType,
		Data:        io.NopCloser(bytes.NewReader(doc.data)),
	}, nil
}

func (s *Store) SetRepresentation(_ context.Context, id identifier.ResourceIdentifier, contentType string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[id.Path] = document{contentType: contentType, data: raw}
	return nil
}

func (s *Store) DeleteResource(_ context.Context, id identifier.ResourceIdentifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id.Path]; !ok {
		return apperrors.NotFound(fmt.Sprintf("no resource at %s", id.Path))
	}
	delete(s.documents, id.Path)
	return nil
}

func (s *Store) HasResource(_ context.Context, id identifier.ResourceIdentifier) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.documents[id.Path]
	return ok, nil
}
