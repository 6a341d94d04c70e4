package galaxyhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "/api/galaxy/v3"

func newHubClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:   server.URL,
		APIPrefix: testPrefix,
		Token:     "hub-token",
		VerifySSL: true,
	}, nil)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func listPage(next *string, items ...map[string]any) map[string]any {
	return map[string]any{
		"meta":  map[string]any{"count": len(items)},
		"links": map[string]any{"next": next},
		"data":  items,
	}
}

func listItem(namespace, name, version, description string) map[string]any {
	return map[string]any{
		"namespace":       namespace,
		"name":            name,
		"description":     description,
		"highest_version": map[string]any{"version": version},
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AAP_HUB_URL")
}

func TestListCollectionsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, listPage(nil))
	}))
	defer server.Close()

	collections, err := newHubClient(t, server).ListCollections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, collections)
}

func TestListCollectionsSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testPrefix+"/collections/", r.URL.Path)
		assert.Equal(t, "Token hub-token", r.Header.Get("Authorization"))
		writeJSON(t, w, listPage(nil,
			listItem("redhat", "rhel_system_roles", "1.2.3", "System roles"),
			listItem("community", "general", "5.0.0", "Community modules"),
		))
	}))
	defer server.Close()

	collections, err := newHubClient(t, server).ListCollections(context.Background())
	require.NoError(t, err)

	require.Len(t, collections, 2)
	assert.Equal(t, "redhat", collections[0].Namespace)
	assert.Equal(t, "1.2.3", collections[0].Version)
	assert.Equal(t, "community.general", collections[1].FQCN())
	assert.Empty(t, collections[0].Roles, "list entries are not enriched")
}

func TestListCollectionsFollowsNextLinks(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "":
			next := testPrefix + "/collections/?offset=1"
			writeJSON(t, w, listPage(&next, listItem("ns1", "one", "1.0.0", "")))
		case "1":
			// Absolute next links must be honored as-is.
			next := server.URL + testPrefix + "/collections/?offset=2"
			writeJSON(t, w, listPage(&next, listItem("ns2", "two", "2.0.0", "")))
		case "2":
			writeJSON(t, w, listPage(nil, listItem("ns3", "three", "3.0.0", "")))
		default:
			t.Fatalf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer server.Close()

	collections, err := newHubClient(t, server).ListCollections(context.Background())
	require.NoError(t, err)

	require.Len(t, collections, 3)
	assert.Equal(t, "ns1.one", collections[0].FQCN())
	assert.Equal(t, "ns2.two", collections[1].FQCN())
	assert.Equal(t, "ns3.three", collections[2].FQCN())
}

func TestListCollectionsStopsOnNullNext(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"meta":{"count":1},"links":{"next":null},"data":[{"namespace":"a","name":"b","highest_version":{"version":"1.0.0"}}]}`)
	}))
	defer server.Close()

	collections, err := newHubClient(t, server).ListCollections(context.Background())
	require.NoError(t, err)

	assert.Len(t, collections, 1)
	assert.Equal(t, 1, calls)
}

func TestListCollectionsCapsRunawayPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always advertises another page.
		next := testPrefix + "/collections/?offset=1"
		writeJSON(t, w, listPage(&next, listItem("loop", "forever", "1.0.0", "")))
	}))
	defer server.Close()

	_, err := newHubClient(t, server).ListCollections(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pages")
}

func TestSearchCollectionsNoKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty keyword list")
	}))
	defer server.Close()

	matches, err := newHubClient(t, server).SearchCollections(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchCollectionsMatchesAnyKeyword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, listPage(nil,
			listItem("nginxinc", "nginx_core", "1.0.0", "Deploy NGINX"),
			listItem("community", "postgresql", "3.0.0", "PostgreSQL modules"),
			listItem("redhat", "rhel_system_roles", "1.2.3", "System roles including nginx config"),
		))
	}))
	defer server.Close()

	matches, err := newHubClient(t, server).SearchCollections(context.Background(), []string{"NGINX", "mysql"})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "nginxinc.nginx_core", matches[0].FQCN())
	assert.Equal(t, "redhat.rhel_system_roles", matches[1].FQCN())
}

func TestGetCollectionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newHubClient(t, server).GetCollection(context.Background(), "missing", "missing")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestGetCollectionWithoutVersionIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"namespace": "ns", "name": "empty", "highest_version": map[string]any{"version": ""}})
	}))
	defer server.Close()

	_, err := newHubClient(t, server).GetCollection(context.Background(), "ns", "empty")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestGetCollectionServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newHubClient(t, server).GetCollection(context.Background(), "ns", "name")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestGetCollectionEnriches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case testPrefix + "/collections/redhat/rhel_system_roles/":
			writeJSON(t, w, map[string]any{
				"namespace":       "redhat",
				"name":            "rhel_system_roles",
				"highest_version": map[string]any{"version": "1.2.3"},
			})
		case testPrefix + "/collections/redhat/rhel_system_roles/versions/1.2.3/":
			writeJSON(t, w, map[string]any{
				"version":      "1.2.3",
				"download_url": "https://hub.example.com/artifacts/redhat-rhel_system_roles-1.2.3.tar.gz",
				"metadata": map[string]any{
					"description":  "System roles",
					"repository":   "https://github.com/linux-system-roles",
					"dependencies": map[string]any{"ansible.posix": "*"},
				},
				"contents": []map[string]any{
					{"name": "firewall", "content_type": "role", "description": "Manage firewalld"},
					{"name": "selinux_fact", "content_type": "module", "description": "Gather SELinux facts"},
					{"name": "to_json", "content_type": "filter", "description": "ignored"},
				},
			})
		case testPrefix + "/collections/redhat/rhel_system_roles/versions/1.2.3/docs-blob/":
			writeJSON(t, w, map[string]any{
				"docs_blob": map[string]any{
					"collection_readme": map[string]any{
						"name": "README.md",
						"html": "<h1>System Roles</h1><script>evil()</script><p>Collection readme.</p>",
					},
					"contents": []map[string]any{
						{"content_name": "firewall", "content_type": "role", "readme_html": "<h2>Firewall</h2><p>Role readme.</p>"},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	col, err := newHubClient(t, server).GetCollection(context.Background(), "redhat", "rhel_system_roles")
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", col.Version)
	assert.Equal(t, "System roles", col.Description)
	assert.Equal(t, "https://hub.example.com/artifacts/redhat-rhel_system_roles-1.2.3.tar.gz", col.DownloadURL)
	assert.Equal(t, "https://github.com/linux-system-roles", col.RepositoryURL)
	assert.Equal(t, map[string]string{"ansible.posix": "*"}, col.Dependencies)

	require.Len(t, col.Roles, 1)
	assert.Equal(t, "firewall", col.Roles[0].Name)
	assert.Contains(t, col.Roles[0].ReadmeMarkdown, "## Firewall")
	assert.Contains(t, col.Roles[0].ReadmeMarkdown, "Role readme.")

	require.Len(t, col.Modules, 1)
	assert.Equal(t, "selinux_fact", col.Modules[0].Name)
	assert.Equal(t, "module", col.Modules[0].ModuleType)

	assert.Contains(t, col.ReadmeMarkdown, "# System Roles")
	assert.Contains(t, col.ReadmeMarkdown, "Collection readme.")
	assert.NotContains(t, col.ReadmeMarkdown, "evil()")
}

func TestGetCollectionDegradesOnEnrichmentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == testPrefix+"/collections/redhat/rhel_system_roles/" {
			writeJSON(t, w, map[string]any{
				"namespace":       "redhat",
				"name":            "rhel_system_roles",
				"highest_version": map[string]any{"version": "1.2.3"},
			})
			return
		}
		http.Error(w, "enrichment unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	col, err := newHubClient(t, server).GetCollection(context.Background(), "redhat", "rhel_system_roles")
	require.NoError(t, err)

	assert.Equal(t, "redhat", col.Namespace)
	assert.Equal(t, "1.2.3", col.Version)
	assert.Empty(t, col.Roles)
	assert.Empty(t, col.Modules)
	assert.Empty(t, col.Description)
	assert.Empty(t, col.ReadmeMarkdown)
}

func TestResolveDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case testPrefix + "/collections/community/general/":
			writeJSON(t, w, map[string]any{"highest_version": map[string]any{"version": "5.0.0"}})
		case testPrefix + "/collections/community/general/versions/5.0.0/":
			writeJSON(t, w, map[string]any{"download_url": "https://hub.example.com/artifacts/community-general-5.0.0.tar.gz"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	url, err := newHubClient(t, server).ResolveDownload(context.Background(), domain.Spec{Namespace: "community", Name: "general"})
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com/artifacts/community-general-5.0.0.tar.gz", url)
}

func TestResolveDownloadPinnedVersionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newHubClient(t, server).ResolveDownload(context.Background(), domain.Spec{Namespace: "ns", Name: "gone", Version: "9.9.9"})
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestDownloadArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token hub-token", r.Header.Get("Authorization"))
		w.Write([]byte("tarball-bytes"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	err := newHubClient(t, server).DownloadArtifact(context.Background(), server.URL+"/artifact.tar.gz", &buf)
	require.NoError(t, err)
	assert.Equal(t, "tarball-bytes", buf.String())
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "https://hub.example.com/api/galaxy/", serverURL("https://hub.example.com/", "/api/galaxy/v3"))
	assert.Equal(t, "https://hub.example.com/api/galaxy/", serverURL("https://hub.example.com", "/api/galaxy/v3/"))
}
