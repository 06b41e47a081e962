package authz

import (
	"context"

	apperrors "solid-service/pkg/errors"
)

// UnionPermissionReader combines the verdicts of several readers into
// one permission map. Per (resource, credential group, mode) the fold
// is the verdict lattice: one Deny suffices to deny, otherwise any
// Allow allows, otherwise no statement.
type UnionPermissionReader struct {
	readers []PermissionReader
}

func NewUnionPermissionReader(readers ...PermissionReader) *UnionPermissionReader {
	return &UnionPermissionReader{readers: readers}
}

// CanHandle accepts the input when at least one child does.
func (r *UnionPermissionReader) CanHandle(ctx context.Context, input ReadInput) error {
	for _, reader := range r.readers {
		if err := reader.CanHandle(ctx, input); err == nil {
			return nil
		}
	}
	return apperrors.BadInput("no reader accepts this input")
}

// Handle queries every child that accepts the input and merges the
// results. A child's Handle failure surfaces; there is no per-reader
// swallow.
func (r *UnionPermissionReader) Handle(ctx context.Context, input ReadInput) (*PermissionMap, error) {
	result := NewPermissionMap()
	for _, reader := range r.readers {
		if err := reader.CanHandle(ctx, input); err != nil {
			continue
		}
		partial, err := reader.Handle(ctx, input)
		if err != nil {
			return nil, err
		}
		mergePermissionMap(result, partial)
	}
	return result, nil
}

// mergePermissionMap folds source into target entry by entry.
func mergePermissionMap(target, source *PermissionMap) {
	for _, entry := range source.Entries() {
		if existing, ok := target.Get(entry.Identifier); ok {
			target.Set(entry.Identifier, MergePermissionSets(existing, entry.Value))
			continue
		}
		target.Set(entry.Identifier, entry.Value.Clone())
	}
}
