// Package galaxyhub implements collection discovery against the Galaxy v3
// API of an AAP Private Automation Hub.
package galaxyhub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/aapapi"
)

// maxPages bounds pagination so a misbehaving server cannot cause unbounded
// iteration by always advertising a next link.
const maxPages = 1000

// Config holds the hub connection settings.
type Config struct {
	// BaseURL is the hub server, e.g. "https://hub.example.com".
	BaseURL string

	// APIPrefix is the Galaxy v3 prefix, e.g. "/api/galaxy/v3".
	APIPrefix string

	// Token is the hub API token ("Token" Authorization scheme).
	Token string

	// Username and Password enable basic auth when no token is set.
	Username string
	Password string

	VerifySSL      bool
	CABundle       string
	Timeout        time.Duration
	BreakerEnabled bool
}

type hubEndpoint struct {
	baseURL string
	prefix  string
}

func (e hubEndpoint) BaseURL() string   { return e.baseURL }
func (e hubEndpoint) APIPrefix() string { return e.prefix }

// The hub authenticates with the galaxy_ng "Token" scheme, not "Bearer".
func (e hubEndpoint) AuthScheme() string { return "Token" }

// Client discovers and enriches collection metadata from the hub.
// It implements domain.Source.
type Client struct {
	api       *aapapi.Client
	serverURL string
	logger    *slog.Logger
}

// NewClient creates a hub client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: AAP_HUB_URL is not set", aapapi.ErrNotConfigured)
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/galaxy/v3"
	}

	api, err := aapapi.New(hubEndpoint{baseURL: cfg.BaseURL, prefix: prefix}, aapapi.Config{
		Token:          cfg.Token,
		Username:       cfg.Username,
		Password:       cfg.Password,
		VerifySSL:      cfg.VerifySSL,
		CABundle:       cfg.CABundle,
		Timeout:        cfg.Timeout,
		BreakerEnabled: cfg.BreakerEnabled,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:       api,
		serverURL: serverURL(cfg.BaseURL, prefix),
		logger:    logger,
	}, nil
}

// ServerURL returns the galaxy server URL usable as an ansible-galaxy
// --server argument.
func (c *Client) ServerURL() string {
	return c.serverURL
}

type collectionListResponse struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
	Data []collectionListItem `json:"data"`
}

type collectionListItem struct {
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Deprecated     bool   `json:"deprecated"`
	HighestVersion struct {
		Version string `json:"version"`
	} `json:"highest_version"`
}

// ListCollections walks the paginated listing endpoint and returns
// lightweight entries in server order.
func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var collections []domain.Collection

	path := "/collections/"
	fullURL := false
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("collection listing exceeded %d pages; refusing to follow further next links", maxPages)
		}

		var resp collectionListResponse
		opts := &aapapi.RequestOptions{FullURL: fullURL}
		if err := c.api.Request(ctx, http.MethodGet, path, opts, &resp); err != nil {
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}

		for _, item := range resp.Data {
			collections = append(collections, domain.Collection{
				Namespace:   item.Namespace,
				Name:        item.Name,
				Version:     item.HighestVersion.Version,
				Description: item.Description,
			})
		}

		if resp.Links.Next == nil || *resp.Links.Next == "" {
			break
		}
		path = *resp.Links.Next
		fullURL = true
	}

	return collections, nil
}

// SearchCollections matches each keyword against namespace, name and
// description; a collection matches when any keyword matches. Results keep
// the listing order. No keywords yields no matches.
func (c *Client) SearchCollections(ctx context.Context, keywords []string) ([]domain.Collection, error) {
	if len(keywords) == 0 {
		return []domain.Collection{}, nil
	}

	all, err := c.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	matches := []domain.Collection{}
	for _, col := range all {
		for _, keyword := range keywords {
			if col.MatchesKeyword(keyword) {
				matches = append(matches, col)
				break
			}
		}
	}
	return matches, nil
}

type collectionDetailResponse struct {
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
	HighestVersion struct {
		Version string `json:"version"`
	} `json:"highest_version"`
}

// GetCollection fetches the collection's highest version and runs the
// three-call enrichment sequence. A missing collection (404 or no version)
// yields domain.ErrCollectionNotFound; other HTTP errors propagate.
// Enrichment failures degrade to empty contents.
func (c *Client) GetCollection(ctx context.Context, namespace, name string) (*domain.Collection, error) {
	var detail collectionDetailResponse
	path := fmt.Sprintf("/collections/%s/%s/", namespace, name)
	if err := c.api.Request(ctx, http.MethodGet, path, nil, &detail); err != nil {
		if aapapi.IsNotFound(err) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to fetch collection %s.%s: %w", namespace, name, err)
	}

	version := detail.HighestVersion.Version
	if version == "" {
		return nil, domain.ErrCollectionNotFound
	}

	enriched, err := c.fetchContents(ctx, namespace, name, version)
	if err != nil {
		// Partial metadata beats no metadata; degrade instead of failing.
		c.logger.Warn("collection content enrichment failed",
			"collection", namespace+"."+name,
			"version", version,
			"error", err,
		)
		enriched = enrichment{contents: domain.EmptyContents()}
	}

	return &domain.Collection{
		Namespace:      namespace,
		Name:           name,
		Version:        version,
		Description:    enriched.contents.Description,
		DownloadURL:    enriched.downloadURL,
		RepositoryURL:  enriched.repositoryURL,
		Dependencies:   enriched.dependencies,
		Roles:          enriched.contents.Roles,
		Modules:        enriched.contents.Modules,
		ReadmeMarkdown: enriched.contents.ReadmeMarkdown,
	}, nil
}

type versionDetailResponse struct {
	Version     string `json:"version"`
	DownloadURL string `json:"download_url"`
	Metadata    struct {
		Description  string            `json:"description"`
		Repository   string            `json:"repository"`
		Dependencies map[string]string `json:"dependencies"`
	} `json:"metadata"`
}

// ResolveDownload returns the artifact download URL for a spec, resolving
// the highest version when the spec does not pin one.
func (c *Client) ResolveDownload(ctx context.Context, spec domain.Spec) (string, error) {
	version := spec.Version
	if version == "" {
		var detail collectionDetailResponse
		path := fmt.Sprintf("/collections/%s/%s/", spec.Namespace, spec.Name)
		if err := c.api.Request(ctx, http.MethodGet, path, nil, &detail); err != nil {
			if aapapi.IsNotFound(err) {
				return "", domain.ErrCollectionNotFound
			}
			return "", fmt.Errorf("failed to resolve %s: %w", spec.FQCN(), err)
		}
		version = detail.HighestVersion.Version
		if version == "" {
			return "", domain.ErrCollectionNotFound
		}
	}

	var versionDetail versionDetailResponse
	path := fmt.Sprintf("/collections/%s/%s/versions/%s/", spec.Namespace, spec.Name, version)
	if err := c.api.Request(ctx, http.MethodGet, path, nil, &versionDetail); err != nil {
		if aapapi.IsNotFound(err) {
			return "", domain.ErrCollectionNotFound
		}
		return "", fmt.Errorf("failed to resolve %s version %s: %w", spec.FQCN(), version, err)
	}
	if versionDetail.DownloadURL == "" {
		return "", domain.ErrCollectionNotFound
	}
	return versionDetail.DownloadURL, nil
}

// DownloadArtifact streams a collection tarball using the hub session
// credentials.
func (c *Client) DownloadArtifact(ctx context.Context, downloadURL string, w io.Writer) error {
	return c.api.Download(ctx, downloadURL, w)
}

func serverURL(baseURL, prefix string) string {
	base := strings.TrimRight(baseURL, "/")
	root := strings.TrimSuffix(strings.TrimRight(prefix, "/"), "/v3")
	return base + root + "/"
}
