// Package queries contains read-side handlers for collection discovery.
package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

// ListCollectionsQuery requests all collections available on the hub.
type ListCollectionsQuery struct{}

// ListCollectionsHandler handles ListCollectionsQuery.
type ListCollectionsHandler struct {
	source domain.Source
}

// NewListCollectionsHandler creates the handler. source may be nil when the
// hub is not configured.
func NewListCollectionsHandler(source domain.Source) *ListCollectionsHandler {
	return &ListCollectionsHandler{source: source}
}

// Handle returns the hub's collections in listing order.
func (h *ListCollectionsHandler) Handle(ctx context.Context, _ ListCollectionsQuery) ([]domain.Collection, error) {
	if h.source == nil {
		return nil, domain.ErrHubDisabled
	}

	collections, err := h.source.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}
