package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/eventbus"
)

// HubSource extends domain.Source with the artifact operations needed for the
// download-and-install workflow.
type HubSource interface {
	domain.Source

	// DownloadArtifact streams a collection tarball with hub credentials.
	DownloadArtifact(ctx context.Context, downloadURL string, w io.Writer) error

	// ServerURL is the galaxy server URL of the hub.
	ServerURL() string
}

// InstallCollectionsCommand installs a batch of collections.
type InstallCollectionsCommand struct {
	Specs []domain.Spec

	// Force reinstalls collections that already have a successful record.
	Force bool
}

// InstallCollectionsHandler handles InstallCollectionsCommand.
//
// Each collection is first attempted through the hub: resolve the artifact
// URL, download it with hub credentials into a temporary file, and install
// the file locally. Installing from a file sidesteps ansible-galaxy's own
// auth flow, which cannot exchange Controller-issued tokens at the hub's SSO
// endpoint. When the hub path fails the handler falls back to installing the
// requirement from the public registry.
type InstallCollectionsHandler struct {
	hub             HubSource
	installer       domain.Installer
	records         domain.InstallRecordRepository
	publisher       eventbus.Publisher
	publicGalaxyURL string
	downloadDir     string
	logger          *slog.Logger
}

// NewInstallCollectionsHandler creates the handler. hub may be nil; every
// install then goes straight to the public registry fallback.
func NewInstallCollectionsHandler(
	hub HubSource,
	installer domain.Installer,
	records domain.InstallRecordRepository,
	publisher eventbus.Publisher,
	publicGalaxyURL string,
	downloadDir string,
	logger *slog.Logger,
) *InstallCollectionsHandler {
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InstallCollectionsHandler{
		hub:             hub,
		installer:       installer,
		records:         records,
		publisher:       publisher,
		publicGalaxyURL: publicGalaxyURL,
		downloadDir:     downloadDir,
		logger:          logger,
	}
}

// Handle installs each spec in order. A failing collection does not stop the
// batch; the summary carries per-collection outcomes.
func (h *InstallCollectionsHandler) Handle(ctx context.Context, cmd InstallCollectionsCommand) (domain.InstallSummary, error) {
	var summary domain.InstallSummary

	for _, spec := range cmd.Specs {
		if spec.Namespace == "" || spec.Name == "" {
			summary.Add(domain.InstallResult{
				Spec:    spec,
				Status:  domain.InstallStatusFailed,
				Message: "namespace and name are required",
			})
			continue
		}

		if !cmd.Force && h.alreadyInstalled(ctx, spec) {
			summary.Add(domain.InstallResult{
				Spec:    spec,
				Status:  domain.InstallStatusSkipped,
				Message: "already installed; use force to reinstall",
			})
			continue
		}

		repository, err := h.installOne(ctx, spec)
		if err != nil {
			h.logger.Error("collection install failed", "collection", spec.FQCN(), "error", err)
			h.record(ctx, spec, repository, domain.InstallStatusFailed, err.Error())
			summary.Add(domain.InstallResult{
				Spec:    spec,
				Status:  domain.InstallStatusFailed,
				Message: err.Error(),
			})
			continue
		}

		h.logger.Info("collection installed", "collection", spec.Requirement(), "repository", repository)
		h.record(ctx, spec, repository, domain.InstallStatusInstalled, "")
		h.publishInstalled(ctx, spec, repository)
		summary.Add(domain.InstallResult{
			Spec:   spec,
			Status: domain.InstallStatusInstalled,
		})
	}

	return summary, nil
}

func (h *InstallCollectionsHandler) alreadyInstalled(ctx context.Context, spec domain.Spec) bool {
	if h.records == nil {
		return false
	}
	latest, err := h.records.GetLatestByFQCN(ctx, spec.FQCN())
	if err != nil {
		h.logger.Warn("failed to check install history", "collection", spec.FQCN(), "error", err)
		return false
	}
	if latest == nil || latest.Status != domain.InstallStatusInstalled {
		return false
	}
	return spec.Version == "" || spec.Version == latest.Version
}

// installOne returns the repository the collection was installed from.
func (h *InstallCollectionsHandler) installOne(ctx context.Context, spec domain.Spec) (string, error) {
	if h.hub != nil {
		err := h.installFromHub(ctx, spec)
		if err == nil {
			return h.hub.ServerURL(), nil
		}
		h.logger.Warn("hub install failed, falling back to public registry",
			"collection", spec.FQCN(),
			"error", err,
		)
	}

	if err := h.installer.InstallRequirement(ctx, spec.Requirement(), h.publicGalaxyURL); err != nil {
		return h.publicGalaxyURL, fmt.Errorf("public registry install failed: %w", err)
	}
	return h.publicGalaxyURL, nil
}

func (h *InstallCollectionsHandler) installFromHub(ctx context.Context, spec domain.Spec) error {
	downloadURL, err := h.hub.ResolveDownload(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to resolve download: %w", err)
	}

	artifactPath, err := h.downloadArtifact(ctx, spec, downloadURL)
	if artifactPath != "" {
		// The tarball is an intermediate; remove it whether or not the
		// install succeeds.
		defer func() {
			if removeErr := os.Remove(artifactPath); removeErr != nil {
				h.logger.Warn("failed to remove downloaded artifact", "path", artifactPath, "error", removeErr)
			}
		}()
	}
	if err != nil {
		return err
	}

	if err := h.installer.InstallFile(ctx, artifactPath); err != nil {
		return fmt.Errorf("failed to install artifact: %w", err)
	}
	return nil
}

// downloadArtifact returns the temporary file path; the path is returned even
// on error once the file exists so the caller can clean it up.
func (h *InstallCollectionsHandler) downloadArtifact(ctx context.Context, spec domain.Spec, downloadURL string) (string, error) {
	dir := h.downloadDir
	if dir == "" {
		dir = os.TempDir()
	}

	file, err := os.CreateTemp(dir, fmt.Sprintf("%s-%s-*.tar.gz", spec.Namespace, spec.Name))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary artifact file: %w", err)
	}
	path := file.Name()

	if err := h.hub.DownloadArtifact(ctx, downloadURL, file); err != nil {
		_ = file.Close()
		return path, fmt.Errorf("failed to download artifact: %w", err)
	}
	if err := file.Close(); err != nil {
		return path, fmt.Errorf("failed to finalize artifact file: %w", err)
	}
	return path, nil
}

func (h *InstallCollectionsHandler) record(ctx context.Context, spec domain.Spec, repository string, status domain.InstallStatus, message string) {
	if h.records == nil {
		return
	}
	record := domain.NewInstallRecord(spec, repository, status, message)
	if err := h.records.Create(ctx, record); err != nil {
		h.logger.Warn("failed to persist install record", "collection", spec.FQCN(), "error", err)
	}
}

type installedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	FQCN       string    `json:"fqcn"`
	Version    string    `json:"version"`
	Repository string    `json:"repository"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (h *InstallCollectionsHandler) publishInstalled(ctx context.Context, spec domain.Spec, repository string) {
	payload, err := json.Marshal(installedEvent{
		EventID:    uuid.New(),
		FQCN:       spec.FQCN(),
		Version:    spec.Version,
		Repository: repository,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("failed to encode install event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, "collections.installed", payload); err != nil {
		h.logger.Warn("failed to publish install event", "error", err)
	}
}
