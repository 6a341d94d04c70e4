// Package commands contains write-side handlers for collection discovery and
// installation.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/eventbus"
)

// DiscoverCommand runs collection discovery against the hub.
type DiscoverCommand struct {
	// Keywords filter the listing; empty keywords return every collection.
	Keywords []string

	// KnownCollections are FQCNs the caller already knows about; they are
	// excluded from the result.
	KnownCollections []string

	// MaxCollections caps how many matches are enriched with full detail.
	// Zero applies DefaultMaxCollections.
	MaxCollections int
}

// DefaultMaxCollections bounds the enrichment fan-out of one discovery run.
// Each enriched collection costs three hub calls.
const DefaultMaxCollections = 25

// DiscoverHandler handles DiscoverCommand.
type DiscoverHandler struct {
	source    domain.Source
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewDiscoverHandler creates the handler. source may be nil when the hub is
// not configured; the handler then reports a disabled result.
func NewDiscoverHandler(source domain.Source, publisher eventbus.Publisher, logger *slog.Logger) *DiscoverHandler {
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoverHandler{source: source, publisher: publisher, logger: logger}
}

// Handle runs discovery. Failures are reported through the result status, not
// as errors, so callers always get a renderable outcome.
func (h *DiscoverHandler) Handle(ctx context.Context, cmd DiscoverCommand) (domain.DiscoveryResult, error) {
	if h.source == nil {
		return domain.NewDisabledResult("Automation Hub integration is disabled. Set AAP_HUB_URL and AAP_HUB_TOKEN to enable collection discovery."), nil
	}

	matches, err := h.match(ctx, cmd.Keywords)
	if err != nil {
		h.logger.Error("collection discovery failed", "keywords", cmd.Keywords, "error", err)
		return domain.NewFailedResult(fmt.Sprintf("Collection discovery failed: %v", err)), nil
	}

	matches = excludeKnown(matches, cmd.KnownCollections)

	limit := cmd.MaxCollections
	if limit <= 0 {
		limit = DefaultMaxCollections
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	var (
		sections   []string
		discovered []domain.DiscoveredCollection
	)
	for _, match := range matches {
		detail, err := h.source.GetCollection(ctx, match.Namespace, match.Name)
		if err != nil {
			// A collection that vanished between listing and detail fetch is
			// dropped from the result rather than failing the whole run.
			h.logger.Warn("skipping collection during discovery",
				"collection", match.FQCN(),
				"error", err,
			)
			continue
		}

		sections = append(sections, detail.Summary())
		discovered = append(discovered, domain.DiscoveredCollection{
			Namespace:   detail.Namespace,
			Name:        detail.Name,
			Version:     detail.Version,
			Description: detail.Description,
			RoleNames:   roleNames(detail.Roles),
		})
	}

	content := "No matching collections found on the Automation Hub."
	if len(sections) > 0 {
		content = strings.Join(sections, "\n")
	}

	result, err := domain.NewSuccessResult(content, discovered)
	if err != nil {
		return domain.DiscoveryResult{}, err
	}

	h.publishDiscovered(ctx, cmd.Keywords, discovered)
	return result, nil
}

// match runs the keyword search, or the full listing when no keywords were
// given.
func (h *DiscoverHandler) match(ctx context.Context, keywords []string) ([]domain.Collection, error) {
	if len(keywords) == 0 {
		return h.source.ListCollections(ctx)
	}
	return h.source.SearchCollections(ctx, keywords)
}

func excludeKnown(collections []domain.Collection, known []string) []domain.Collection {
	if len(known) == 0 {
		return collections
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, fqcn := range known {
		knownSet[strings.ToLower(fqcn)] = struct{}{}
	}

	var out []domain.Collection
	for _, col := range collections {
		if _, ok := knownSet[strings.ToLower(col.FQCN())]; !ok {
			out = append(out, col)
		}
	}
	return out
}

func roleNames(roles []domain.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

type discoveredEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Keywords   []string  `json:"keywords"`
	FQCNs      []string  `json:"fqcns"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (h *DiscoverHandler) publishDiscovered(ctx context.Context, keywords []string, discovered []domain.DiscoveredCollection) {
	fqcns := make([]string, len(discovered))
	for i, d := range discovered {
		fqcns[i] = d.FQCN()
	}

	payload, err := json.Marshal(discoveredEvent{
		EventID:    uuid.New(),
		Keywords:   keywords,
		FQCNs:      fqcns,
		Count:      len(fqcns),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("failed to encode discovery event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, "collections.discovered", payload); err != nil {
		h.logger.Warn("failed to publish discovery event", "error", err)
	}
}
