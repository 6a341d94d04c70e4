package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/aapbridge/internal/collections/application/commands"
	"github.com/felixgeelhaar/aapbridge/internal/collections/application/queries"
	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

type discoverInput struct {
	Keywords         []string `json:"keywords,omitempty"`
	KnownCollections []string `json:"known_collections,omitempty"`
	Limit            int      `json:"limit,omitempty"`
}

type discoverOutput struct {
	Status           string   `json:"status"`
	Content          string   `json:"content"`
	RequirementsYAML string   `json:"requirements_yaml,omitempty"`
	FQCNs            []string `json:"fqcns,omitempty"`
}

type searchInput struct {
	Keywords []string `json:"keywords" jsonschema:"required"`
}

type getCollectionInput struct {
	Namespace string `json:"namespace" jsonschema:"required"`
	Name      string `json:"name" jsonschema:"required"`
}

type installInput struct {
	Collections []string `json:"collections" jsonschema:"required"`
	Force       bool     `json:"force,omitempty"`
}

type installOutput struct {
	Installed int      `json:"installed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Details   []string `json:"details"`
}

type historyInput struct {
	Limit int `json:"limit,omitempty"`
}

func registerCollectionTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("collections.discover").
		Description("Discover Ansible collections on the Private Automation Hub. Returns markdown summaries and a requirements.yml manifest. Pass known_collections to exclude collections you already know about.").
		Handler(func(ctx context.Context, input discoverInput) (*discoverOutput, error) {
			result, err := app.DiscoverHandler.Handle(ctx, commands.DiscoverCommand{
				Keywords:         input.Keywords,
				KnownCollections: input.KnownCollections,
				MaxCollections:   input.Limit,
			})
			if err != nil {
				return nil, err
			}

			fqcns := make([]string, len(result.Collections))
			for i, col := range result.Collections {
				fqcns[i] = col.FQCN()
			}
			return &discoverOutput{
				Status:           string(result.Status),
				Content:          result.Content,
				RequirementsYAML: result.RequirementsYAML,
				FQCNs:            fqcns,
			}, nil
		})

	srv.Tool("collections.search").
		Description("Search hub collections by keyword. A collection matches when any keyword matches its namespace, name or description.").
		Handler(func(ctx context.Context, input searchInput) (string, error) {
			collections, err := app.SearchCollectionsHandler.Handle(ctx, queries.SearchCollectionsQuery{Keywords: input.Keywords})
			if err != nil {
				return "", err
			}
			if len(collections) == 0 {
				return "No matching collections found.", nil
			}

			var b strings.Builder
			for _, col := range collections {
				fmt.Fprintf(&b, "- %s", col.FQCN())
				if col.Version != "" {
					fmt.Fprintf(&b, " (%s)", col.Version)
				}
				if col.Description != "" {
					fmt.Fprintf(&b, ": %s", col.Description)
				}
				b.WriteString("\n")
			}
			return b.String(), nil
		})

	srv.Tool("collections.get").
		Description("Get full details of one collection as markdown, including roles, modules, dependencies and the install command.").
		Handler(func(ctx context.Context, input getCollectionInput) (string, error) {
			collection, err := app.GetCollectionHandler.Handle(ctx, queries.GetCollectionQuery{
				Namespace: input.Namespace,
				Name:      input.Name,
			})
			if err != nil {
				if errors.Is(err, domain.ErrCollectionNotFound) {
					return "", fmt.Errorf("collection %s.%s not found on the hub", input.Namespace, input.Name)
				}
				return "", err
			}
			return collection.Detail(), nil
		})

	srv.Tool("collections.install").
		Description("Install collections locally. Each entry is namespace.name or namespace.name:version. The hub is tried first; the public registry is the fallback.").
		Handler(func(ctx context.Context, input installInput) (*installOutput, error) {
			specs := make([]domain.Spec, 0, len(input.Collections))
			for _, raw := range input.Collections {
				spec, err := parseSpec(raw)
				if err != nil {
					return nil, err
				}
				specs = append(specs, spec)
			}

			summary, err := app.InstallCollectionsHandler.Handle(ctx, commands.InstallCollectionsCommand{
				Specs: specs,
				Force: input.Force,
			})
			if err != nil {
				return nil, err
			}

			details := make([]string, len(summary.Results))
			for i, result := range summary.Results {
				detail := fmt.Sprintf("%s: %s", result.Spec.Requirement(), result.Status)
				if result.Message != "" {
					detail += " (" + result.Message + ")"
				}
				details[i] = detail
			}
			return &installOutput{
				Installed: summary.Succeeded(),
				Skipped:   summary.Skipped(),
				Failed:    summary.Failed(),
				Details:   details,
			}, nil
		})

	srv.Tool("collections.history").
		Description("Show the local collection install history, newest first.").
		Handler(func(ctx context.Context, input historyInput) (string, error) {
			records, err := app.ListInstallRecordsHandler.Handle(ctx, queries.ListInstallRecordsQuery{Limit: input.Limit})
			if err != nil {
				return "", err
			}
			if len(records) == 0 {
				return "No install history.", nil
			}

			var b strings.Builder
			for _, record := range records {
				fmt.Fprintf(&b, "- %s %s", record.FQCN, record.Status)
				if record.Version != "" {
					fmt.Fprintf(&b, " (%s)", record.Version)
				}
				fmt.Fprintf(&b, " at %s\n", record.InstalledAt.Format("2006-01-02 15:04"))
			}
			return b.String(), nil
		})

	return nil
}

// parseSpec parses "namespace.name" or "namespace.name:version".
func parseSpec(raw string) (domain.Spec, error) {
	name := raw
	version := ""
	if idx := strings.Index(raw, ":"); idx >= 0 {
		name = raw[:idx]
		version = raw[idx+1:]
	}

	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Spec{}, fmt.Errorf("invalid collection %q: expected namespace.name[:version]", raw)
	}
	return domain.Spec{Namespace: parts[0], Name: parts[1], Version: version}, nil
}
