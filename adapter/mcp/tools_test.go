package mcp

import (
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/aapbridge/adapter/cli"
	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	require.NoError(t, RegisterTools(srv, ToolDependencies{App: &cli.App{}}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		if name, ok := tool["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{
		"collections.discover",
		"collections.search",
		"collections.get",
		"collections.install",
		"collections.history",
		"controller.ping",
		"controller.templates",
		"controller.launch",
	} {
		assert.True(t, names[want], "%s tool should be registered", want)
	}
}

func TestRegisterToolsRequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})

	err := RegisterTools(srv, ToolDependencies{})

	require.Error(t, err)
}

func TestParseSpec(t *testing.T) {
	spec, err := parseSpec("redhat.rhel_system_roles:1.2.3")
	require.NoError(t, err)
	assert.Equal(t, domain.Spec{Namespace: "redhat", Name: "rhel_system_roles", Version: "1.2.3"}, spec)

	_, err = parseSpec("no-namespace")
	require.Error(t, err)
}
