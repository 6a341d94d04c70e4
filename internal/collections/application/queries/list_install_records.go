package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

// ListInstallRecordsQuery requests the install history. Limit <= 0 returns
// everything.
type ListInstallRecordsQuery struct {
	Limit int
}

// ListInstallRecordsHandler handles ListInstallRecordsQuery.
type ListInstallRecordsHandler struct {
	records domain.InstallRecordRepository
}

// NewListInstallRecordsHandler creates the handler.
func NewListInstallRecordsHandler(records domain.InstallRecordRepository) *ListInstallRecordsHandler {
	return &ListInstallRecordsHandler{records: records}
}

// Handle returns install records, newest first.
func (h *ListInstallRecordsHandler) Handle(ctx context.Context, query ListInstallRecordsQuery) ([]*domain.InstallRecord, error) {
	records, err := h.records.List(ctx, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list install records: %w", err)
	}
	return records, nil
}
