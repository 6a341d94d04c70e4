package domain

import (
	"time"

	"github.com/google/uuid"
)

// Spec identifies a collection to install.
type Spec struct {
	Namespace string

	Name string

	// Version is an optional version constraint; empty means latest.
	Version string

	// Source is an optional explicit server URL overriding resolution.
	Source string
}

// FQCN returns the fully qualified collection name.
func (s Spec) FQCN() string {
	return s.Namespace + "." + s.Name
}

// Requirement returns the requirement string passed to ansible-galaxy,
// e.g. "redhat.rhel_system_roles:1.2.3".
func (s Spec) Requirement() string {
	if s.Version == "" {
		return s.FQCN()
	}
	return s.FQCN() + ":" + s.Version
}

// DownloadInfo pairs a spec with its resolved artifact location.
type DownloadInfo struct {
	Spec Spec

	// ArtifactPath is the local temporary path of the downloaded tarball.
	ArtifactPath string

	// Repository is the server the artifact was downloaded from.
	Repository string
}

// InstallStatus is the per-collection outcome of an install run.
type InstallStatus string

const (
	// InstallStatusInstalled means the collection was installed.
	InstallStatusInstalled InstallStatus = "installed"

	// InstallStatusFailed means installation failed.
	InstallStatusFailed InstallStatus = "failed"

	// InstallStatusSkipped means the collection was already satisfied.
	InstallStatusSkipped InstallStatus = "skipped"
)

// InstallResult records the outcome of installing one collection.
type InstallResult struct {
	Spec    Spec
	Status  InstallStatus
	Message string
}

// InstallSummary aggregates per-collection results for a batch.
type InstallSummary struct {
	Results []InstallResult
}

// Add appends a result to the summary.
func (s *InstallSummary) Add(result InstallResult) {
	s.Results = append(s.Results, result)
}

// Succeeded returns the number of installed collections.
func (s InstallSummary) Succeeded() int { return s.count(InstallStatusInstalled) }

// Failed returns the number of failed collections.
func (s InstallSummary) Failed() int { return s.count(InstallStatusFailed) }

// Skipped returns the number of skipped collections.
func (s InstallSummary) Skipped() int { return s.count(InstallStatusSkipped) }

func (s InstallSummary) count(status InstallStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// InstallRecord is the persisted history entry for one install attempt.
type InstallRecord struct {
	ID          uuid.UUID
	FQCN        string
	Version     string
	Repository  string
	Status      InstallStatus
	Message     string
	InstalledAt time.Time
}

// NewInstallRecord creates an install record for a completed attempt.
func NewInstallRecord(spec Spec, repository string, status InstallStatus, message string) *InstallRecord {
	return &InstallRecord{
		ID:          uuid.New(),
		FQCN:        spec.FQCN(),
		Version:     spec.Version,
		Repository:  repository,
		Status:      status,
		Message:     message,
		InstalledAt: time.Now().UTC(),
	}
}
