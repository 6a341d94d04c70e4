package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRequirementsYAMLEmptyInput(t *testing.T) {
	manifest, err := RequirementsYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, "", manifest)

	manifest, err = RequirementsYAML([]DiscoveredCollection{})
	require.NoError(t, err)
	assert.Equal(t, "", manifest)
}

func TestRequirementsYAMLSingleCollection(t *testing.T) {
	manifest, err := RequirementsYAML([]DiscoveredCollection{
		{Namespace: "redhat", Name: "rhel_system_roles", Version: "1.2.3"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(manifest, "---\n"))
	assert.Contains(t, manifest, "collections:")
	assert.Contains(t, manifest, "name: redhat.rhel_system_roles")
	assert.Contains(t, manifest, "version: '1.2.3'")
}

func TestRequirementsYAMLRoundTrips(t *testing.T) {
	manifest, err := RequirementsYAML([]DiscoveredCollection{
		{Namespace: "redhat", Name: "rhel_system_roles", Version: "1.2.3"},
		{Namespace: "community", Name: "general", Version: "5.0.0"},
	})
	require.NoError(t, err)

	var parsed struct {
		Collections []RequirementsEntry `yaml:"collections"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(manifest), &parsed))

	require.Len(t, parsed.Collections, 2)
	assert.Equal(t, "redhat.rhel_system_roles", parsed.Collections[0].Name)
	assert.Equal(t, "1.2.3", parsed.Collections[0].Version)
	assert.Equal(t, "community.general", parsed.Collections[1].Name)
}

func TestNewSuccessResultWithoutCollections(t *testing.T) {
	result, err := NewSuccessResult("nothing found", nil)
	require.NoError(t, err)

	assert.Equal(t, DiscoverySucceeded, result.Status)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "", result.RequirementsYAML)
	assert.Empty(t, result.Collections)
}

func TestNewSuccessResultWithCollections(t *testing.T) {
	result, err := NewSuccessResult("found one", []DiscoveredCollection{
		{Namespace: "redhat", Name: "rhel_system_roles", Version: "1.2.3"},
	})
	require.NoError(t, err)

	assert.Contains(t, result.RequirementsYAML, "collections:")
	assert.Contains(t, result.RequirementsYAML, "name: redhat.rhel_system_roles")
	assert.Contains(t, result.RequirementsYAML, "version: '1.2.3'")
	assert.Equal(t, "success (1 collections)", result.String())
}

func TestDisabledAndFailedResults(t *testing.T) {
	disabled := NewDisabledResult("hub integration is disabled")
	failed := NewFailedResult("hub unreachable")

	assert.Equal(t, DiscoveryDisabled, disabled.Status)
	assert.False(t, disabled.IsSuccess())
	assert.Equal(t, "hub integration is disabled", disabled.Content)

	assert.Equal(t, DiscoveryFailed, failed.Status)
	assert.False(t, failed.IsSuccess())
	assert.Empty(t, failed.RequirementsYAML)
}

func TestFQCNSetLowercases(t *testing.T) {
	result, err := NewSuccessResult("", []DiscoveredCollection{
		{Namespace: "RedHat", Name: "RHEL_System_Roles", Version: "1.0.0"},
	})
	require.NoError(t, err)

	_, ok := result.FQCNSet()["redhat.rhel_system_roles"]
	assert.True(t, ok)
}

func TestInstallSummaryCounts(t *testing.T) {
	var summary InstallSummary
	summary.Add(InstallResult{Spec: Spec{Namespace: "a", Name: "x"}, Status: InstallStatusInstalled})
	summary.Add(InstallResult{Spec: Spec{Namespace: "a", Name: "y"}, Status: InstallStatusFailed, Message: "boom"})
	summary.Add(InstallResult{Spec: Spec{Namespace: "a", Name: "z"}, Status: InstallStatusSkipped})

	assert.Equal(t, 1, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())
	assert.Equal(t, 1, summary.Skipped())
}

func TestSpecRequirement(t *testing.T) {
	assert.Equal(t, "redhat.rhel_system_roles:1.2.3", Spec{Namespace: "redhat", Name: "rhel_system_roles", Version: "1.2.3"}.Requirement())
	assert.Equal(t, "community.general", Spec{Namespace: "community", Name: "general"}.Requirement())
}

func TestNewInstallRecord(t *testing.T) {
	record := NewInstallRecord(Spec{Namespace: "redhat", Name: "rhel_system_roles", Version: "1.2.3"}, "https://hub.example.com", InstallStatusInstalled, "ok")

	assert.Equal(t, "redhat.rhel_system_roles", record.FQCN)
	assert.Equal(t, "1.2.3", record.Version)
	assert.Equal(t, InstallStatusInstalled, record.Status)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.InstalledAt.IsZero())
}
