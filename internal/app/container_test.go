package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/aapbridge/internal/collections/application/commands"
	"github.com/felixgeelhaar/aapbridge/internal/collections/application/queries"
	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/pkg/config"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SQLitePath:      filepath.Join(t.TempDir(), "test.db"),
		PublicGalaxyURL: "https://galaxy.ansible.com",
		GalaxyBinary:    "ansible-galaxy",
	}
}

func TestNewContainerLocalMode(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.DBConn)
	assert.NotNil(t, container.EventPublisher)
	assert.NotNil(t, container.DiscoverHandler)
	assert.NotNil(t, container.InstallCollectionsHandler)
	assert.NotNil(t, container.ListInstallRecordsHandler)
	assert.Nil(t, container.Hub)
	assert.Nil(t, container.Controller)
}

func TestContainerDiscoveryDisabledWithoutHub(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer container.Close()

	result, err := container.DiscoverHandler.Handle(ctx, commands.DiscoverCommand{Keywords: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, domain.DiscoveryDisabled, result.Status)

	_, err = container.ListCollectionsHandler.Handle(ctx, queries.ListCollectionsQuery{})
	assert.ErrorIs(t, err, domain.ErrHubDisabled)
}

func TestContainerHubEnabledButUnconfigured(t *testing.T) {
	cfg := localConfig(t)
	cfg.HubEnabled = true

	container, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer container.Close()

	assert.Nil(t, container.Hub)
}

func TestContainerInstallRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer container.Close()

	record := domain.NewInstallRecord(
		domain.Spec{Namespace: "redhat", Name: "openshift", Version: "2.0.0"},
		"https://galaxy.ansible.com", domain.InstallStatusInstalled, "")
	require.NoError(t, container.InstallRecordRepo.Create(ctx, record))

	records, err := container.ListInstallRecordsHandler.Handle(ctx, queries.ListInstallRecordsQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "redhat.openshift", records[0].FQCN)
}
