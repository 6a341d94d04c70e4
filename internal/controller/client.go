// Package controller talks to the AAP Automation Controller API.
package controller

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/aapapi"
)

// maxPages bounds job template pagination.
const maxPages = 1000

// Config holds the controller connection settings.
type Config struct {
	// BaseURL is the controller server, e.g. "https://controller.example.com".
	BaseURL string

	// Token is a personal access token. When ClientID and ClientSecret are
	// set the OAuth2 client credentials flow is used instead.
	Token        string
	ClientID     string
	ClientSecret string

	Username string
	Password string

	VerifySSL      bool
	CABundle       string
	Timeout        time.Duration
	BreakerEnabled bool
}

type controllerEndpoint struct {
	baseURL string
}

func (e controllerEndpoint) BaseURL() string    { return e.baseURL }
func (e controllerEndpoint) APIPrefix() string  { return "/api/v2" }
func (e controllerEndpoint) AuthScheme() string { return "Bearer" }

// Client wraps the controller REST API.
type Client struct {
	api    *aapapi.Client
	logger *slog.Logger
}

// NewClient creates a controller client. With client credentials configured
// it mints Bearer tokens from the AAP OAuth2 token endpoint.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: AAP_CONTROLLER_URL is not set", aapapi.ErrNotConfigured)
	}

	var tokenSource oauth2.TokenSource
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		tokenSource = newTokenSource(cfg)
	}

	api, err := aapapi.New(controllerEndpoint{baseURL: cfg.BaseURL}, aapapi.Config{
		Token:          cfg.Token,
		TokenSource:    tokenSource,
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

	return &Client{api: api, logger: logger}, nil
}

func newTokenSource(cfg Config) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     strings.TrimRight(cfg.BaseURL, "/") + "/o/token/",
	}

	ctx := context.Background()
	if !cfg.VerifySSL {
		hc := &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit operator opt-out
			},
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	return cc.TokenSource(ctx)
}

// PingInfo is the controller health summary.
type PingInfo struct {
	Version     string `json:"version"`
	ActiveNode  string `json:"active_node"`
	InstallUUID string `json:"install_uuid"`
	Instances   []struct {
		Node      string `json:"node"`
		Heartbeat string `json:"heartbeat"`
	} `json:"instances"`
}

// Ping checks connectivity and returns the controller version.
func (c *Client) Ping(ctx context.Context) (*PingInfo, error) {
	var info PingInfo
	if err := c.api.Request(ctx, http.MethodGet, "/ping/", nil, &info); err != nil {
		return nil, fmt.Errorf("controller ping failed: %w", err)
	}
	return &info, nil
}

// User is the authenticated controller account.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
}

type meResponse struct {
	Results []User `json:"results"`
}

// Me returns the account the credentials authenticate as.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp meResponse
	if err := c.api.Request(ctx, http.MethodGet, "/me/", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("controller returned no user for the current credentials")
	}
	return &resp.Results[0], nil
}

// JobTemplate is a launchable controller template.
type JobTemplate struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	JobType     string `json:"job_type"`
}

type jobTemplateListResponse struct {
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
	Results []JobTemplate `json:"results"`
}

// ListJobTemplates walks the paginated job template listing.
func (c *Client) ListJobTemplates(ctx context.Context) ([]JobTemplate, error) {
	var templates []JobTemplate

	path := "/job_templates/"
	fullURL := false
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("job template listing exceeded %d pages", maxPages)
		}

		var resp jobTemplateListResponse
		opts := &aapapi.RequestOptions{FullURL: fullURL}
		if err := c.api.Request(ctx, http.MethodGet, path, opts, &resp); err != nil {
			return nil, fmt.Errorf("failed to list job templates: %w", err)
		}
		templates = append(templates, resp.Results...)

		if resp.Next == nil || *resp.Next == "" {
			break
		}
		path = *resp.Next
		fullURL = true
	}

	return templates, nil
}

// LaunchedJob is the outcome of launching a job template.
type LaunchedJob struct {
	Job    int    `json:"job"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// LaunchJobTemplate starts a job from the template, optionally passing extra
// variables.
func (c *Client) LaunchJobTemplate(ctx context.Context, templateID int, extraVars map[string]any) (*LaunchedJob, error) {
	var body any
	if len(extraVars) > 0 {
		body = map[string]any{"extra_vars": extraVars}
	}

	var job LaunchedJob
	path := fmt.Sprintf("/job_templates/%d/launch/", templateID)
	opts := &aapapi.RequestOptions{Body: body}
	if err := c.api.Request(ctx, http.MethodPost, path, opts, &job); err != nil {
		return nil, fmt.Errorf("failed to launch job template %d: %w", templateID, err)
	}
	return &job, nil
}
