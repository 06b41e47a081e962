package authz

import (
	"context"
	"fmt"
	"net/http"

	"solid-service/internal/identifier"
	"solid-service/internal/storage"
	apperrors "solid-service/pkg/errors"
)

// Operation is the store-level view of an HTTP request: what it targets
// and what it wants to do. After authorization succeeds the permission
// map is attached for downstream use such as WAC-Allow headers.
type Operation struct {
	Target        identifier.ResourceIdentifier
	Method        string
	ContentType   string
	Body          []byte
	PermissionMap *PermissionMap
}

// ModesExtractor determines which access modes an operation requires on
// which resources.
type ModesExtractor interface {
	Extract(ctx context.Context, operation *Operation) (*AccessMap, error)
}

// MethodModesExtractor maps HTTP methods to access modes. PUT needs
// create on top of write when the target does not exist yet, probed
// through the resource set.
type MethodModesExtractor struct {
	resourceSet storage.ResourceSet
}

func NewMethodModesExtractor(resourceSet storage.ResourceSet) *MethodModesExtractor {
	return &MethodModesExtractor{resourceSet: resourceSet}
}

func (e *MethodModesExtractor) Extract(ctx context.Context, operation *Operation) (*AccessMap, error) {
	accessMap := NewAccessMap()
	switch operation.Method {
	case http.MethodGet, http.MethodHead:
		accessMap.Set(operation.Target, NewModeSet(Read))
	case http.MethodPost, http.MethodPatch:
		accessMap.Set(operation.Target, NewModeSet(Append))
	case http.MethodPut:
		modes := NewModeSet(Write)
		exists, err := e.resourceSet.HasResource(ctx, operation.Target)
		if err != nil {
			return nil, err
		}
		if !exists {
			modes.Add(Create)
		}
		accessMap.Set(operation.Target, modes)
	case http.MethodDelete:
		accessMap.Set(operation.Target, NewModeSet(Delete))
	default:
		return nil, apperrors.MethodNotAllowed(fmt.Sprintf("unsupported method %s", operation.Method))
	}
	return accessMap, nil
}

// IntermediateModesExtractor wraps a source extractor and adds create
// requirements for the ancestor containers a create-bearing operation
// would bring into existence. The walk stops at the first container
// that already exists. Write and append needs of the final resource are
// not repeated on ancestors; they are already covered on the resource
// itself.
type IntermediateModesExtractor struct {
	source      ModesExtractor
	resourceSet storage.ResourceSet
	strategy    identifier.Strategy
}

func NewIntermediateModesExtractor(source ModesExtractor, resourceSet storage.ResourceSet, strategy identifier.Strategy) *IntermediateModesExtractor {
	return &IntermediateModesExtractor{source: source, resourceSet: resourceSet, strategy: strategy}
}

func (e *IntermediateModesExtractor) Extract(ctx context.Context, operation *Operation) (*AccessMap, error) {
	accessMap, err := e.source.Extract(ctx, operation)
	if err != nil {
		return nil, err
	}

	result := NewAccessMap()
	for _, entry := range accessMap.Entries() {
		result.Set(entry.Identifier, entry.Value)
	}
	for _, entry := range accessMap.Entries() {
		if !entry.Value.Has(Create) {
			continue
		}
		if err := e.addMissingAncestors(ctx, entry.Identifier, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *IntermediateModesExtractor) addMissingAncestors(ctx context.Context, id identifier.ResourceIdentifier, accessMap *AccessMap) error {
	current := id
	for !e.strategy.IsRootContainer(current) {
		parent, err := e.strategy.GetParentContainer(current)
		if err != nil {
			return err
		}
		exists, err := e.resourceSet.HasResource(ctx, parent)
		if err != nil {
			return err
		}
		if exists {
			break
		}
		MergeModes(accessMap, parent, NewModeSet(Create))
		current = parent
	}
	return nil
}
