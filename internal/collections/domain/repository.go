package domain

import (
	"context"
	"errors"
)

var (
	// ErrCollectionNotFound is returned when a collection does not exist on
	// the hub.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrHubDisabled is returned when the Private Automation Hub integration
	// is disabled or unconfigured.
	ErrHubDisabled = errors.New("automation hub is disabled")
)

// Source discovers collections on a hub.
type Source interface {
	// ListCollections returns lightweight entries for every collection,
	// following server pagination, in server order.
	ListCollections(ctx context.Context) ([]Collection, error)

	// GetCollection returns the fully enriched collection, or
	// ErrCollectionNotFound.
	GetCollection(ctx context.Context, namespace, name string) (*Collection, error)

	// SearchCollections returns collections whose namespace, name or
	// description matches any keyword, in listing order. No keywords means
	// no matches.
	SearchCollections(ctx context.Context, keywords []string) ([]Collection, error)

	// ResolveDownload returns the artifact download URL for a spec, or
	// ErrCollectionNotFound.
	ResolveDownload(ctx context.Context, spec Spec) (string, error)
}

// Installer installs collection artifacts via local tooling.
type Installer interface {
	// InstallFile installs a downloaded collection tarball.
	InstallFile(ctx context.Context, artifactPath string) error

	// InstallRequirement installs a requirement string from the given
	// server, typically the public registry fallback.
	InstallRequirement(ctx context.Context, requirement, serverURL string) error
}

// InstallRecordRepository persists install history.
type InstallRecordRepository interface {
	// Create saves a new install record.
	Create(ctx context.Context, record *InstallRecord) error

	// GetLatestByFQCN returns the most recent record for a collection, or
	// nil when none exists.
	GetLatestByFQCN(ctx context.Context, fqcn string) (*InstallRecord, error)

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]*InstallRecord, error)
}
