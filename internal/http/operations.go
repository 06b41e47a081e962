package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	stdhttp "net/http"

	"solid-service/internal/authz"
	"solid-service/internal/storage"
	apperrors "solid-service/pkg/errors"
)

// StorageOperationHandler executes authorized operations against the
// resource store. It is deliberately minimal: representations are
// stored and served verbatim.
type StorageOperationHandler struct {
	store   storage.ResourceStore
	indexer storage.ResourceIndexer
}

// NewStorageOperationHandler creates the handler. indexer may be nil
// when the store answers existence probes itself.
func NewStorageOperationHandler(store storage.ResourceStore, indexer storage.ResourceIndexer) *StorageOperationHandler {
	return &StorageOperationHandler{store: store, indexer: indexer}
}

func (h *StorageOperationHandler) Handle(ctx context.Context, operation *authz.Operation) (*authz.OperationResult, error) {
	switch operation.Method {
	case stdhttp.MethodGet:
		return h.get(ctx, operation)
	case stdhttp.MethodHead:
		result, err := h.get(ctx, operation)
		if err != nil {
			return nil, err
		}
		result.Body = nil
		return result, nil
	case stdhttp.MethodPut:
		return h.put(ctx, operation)
	case stdhttp.MethodDelete:
		return h.delete(ctx, operation)
	default:
		return nil, apperrors.MethodNotAllowed(fmt.Sprintf("unsupported method %s", operation.Method))
	}
}

func (h *StorageOperationHandler) get(ctx context.Context, operation *authz.Operation) (*authz.OperationResult, error) {
	representation, err := h.store.GetRepresentation(ctx, operation.Target)
	if err != nil {
		return nil, err
	}
	defer representation.Data.Close()

	body, err := io.ReadAll(representation.Data)
	if err != nil {
		return nil, err
	}
	return &authz.OperationResult{
		Status:      stdhttp.StatusOK,
		ContentType: representation.ContentType,
		Body:        body,
	}, nil
}

func (h *StorageOperationHandler) put(ctx context.Context, operation *authz.Operation) (*authz.OperationResult, error) {
	contentType := operation.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeTurtle
	}
	if err := h.store.SetRepresentation(ctx, operation.Target, contentType, bytes.NewReader(operation.Body)); err != nil {
		return nil, err
	}
	if h.indexer != nil {
		if err := h.indexer.Add(ctx, operation.Target); err != nil {
			return nil, err
		}
	}
	return &authz.OperationResult{Status: stdhttp.StatusCreated}, nil
}

func (h *StorageOperationHandler) delete(ctx context.Context, operation *authz.Operation) (*authz.OperationResult, error) {
	if err := h.store.DeleteResource(ctx, operation.Target); err != nil {
		return nil, err
	}
	if h.indexer != nil {
		if err := h.indexer.Remove(ctx, operation.Target); err != nil {
			return nil, err
		}
	}
	return &authz.OperationResult{Status: stdhttp.StatusNoContent}, nil
}
