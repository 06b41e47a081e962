package storage

import (
	"context"
	"io"

	"solid-service/internal/identifier"
)

// Content types used for stored representations.
const (
	ContentTypeTurtle = "text/turtle"
)

// Representation is a stored resource document.
type Representation struct {
	Identifier  identifier.ResourceIdentifier
	ContentType string
	Data        io.ReadCloser
}

// ResourceStore fetches and writes resource representations. Reads must
// return an error matching pkg/errors.ErrNotFound when the resource
// does not exist; any other failure propagates as-is. Implementations
// are shared across requests and must be safe for concurrent use.
type ResourceStore interface {
	GetRepresentation(ctx context.Context, id identifier.ResourceIdentifier) (*Representation, error)
	SetRepresentation(ctx context.Context, id identifier.ResourceIdentifier, contentType string, data io.Reader) error
	DeleteResource(ctx context.Context, id identifier.ResourceIdentifier) error
}

// ResourceSet probes resource existence. Nonexistence is a false
// result, never an error.
type ResourceSet interface {
	HasResource(ctx context.Context, id identifier.ResourceIdentifier) (bool, error)
}

// ResourceIndexer maintains an external existence index alongside the
// store, for backends whose own existence probes are expensive.
type ResourceIndexer interface {
	Add(ctx context.Context, id identifier.ResourceIdentifier) error
	Remove(ctx context.Context, id identifier.ResourceIdentifier) error
}
