package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

// GetCollectionQuery requests full detail for one collection.
type GetCollectionQuery struct {
	Namespace string
	Name      string
}

// GetCollectionHandler handles GetCollectionQuery.
type GetCollectionHandler struct {
	source domain.Source
}

// NewGetCollectionHandler creates the handler.
func NewGetCollectionHandler(source domain.Source) *GetCollectionHandler {
	return &GetCollectionHandler{source: source}
}

// Handle returns the enriched collection. A missing collection yields
// domain.ErrCollectionNotFound.
func (h *GetCollectionHandler) Handle(ctx context.Context, query GetCollectionQuery) (*domain.Collection, error) {
	if h.source == nil {
		return nil, domain.ErrHubDisabled
	}
	if query.Namespace == "" || query.Name == "" {
		return nil, fmt.Errorf("namespace and name are required")
	}

	collection, err := h.source.GetCollection(ctx, query.Namespace, query.Name)
	if err != nil {
		return nil, err
	}
	return collection, nil
}
