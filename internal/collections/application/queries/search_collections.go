package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

// SearchCollectionsQuery requests collections matching any keyword.
type SearchCollectionsQuery struct {
	Keywords []string
}

// SearchCollectionsHandler handles SearchCollectionsQuery.
type SearchCollectionsHandler struct {
	source domain.Source
}

// NewSearchCollectionsHandler creates the handler.
func NewSearchCollectionsHandler(source domain.Source) *SearchCollectionsHandler {
	return &SearchCollectionsHandler{source: source}
}

// Handle returns matching collections in listing order. An empty keyword
// list yields no matches.
func (h *SearchCollectionsHandler) Handle(ctx context.Context, query SearchCollectionsQuery) ([]domain.Collection, error) {
	if h.source == nil {
		return nil, domain.ErrHubDisabled
	}

	collections, err := h.source.SearchCollections(ctx, query.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to search collections: %w", err)
	}
	return collections, nil
}
