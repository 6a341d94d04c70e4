package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/aapbridge/internal/controller"
)

type emptyInput struct{}

type launchInput struct {
	TemplateID int            `json:"template_id" jsonschema:"required"`
	ExtraVars  map[string]any `json:"extra_vars,omitempty"`
}

func registerControllerTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("controller.ping").
		Description("Check connectivity to the Automation Controller and return its version.").
		Handler(func(ctx context.Context, _ emptyInput) (*controller.PingInfo, error) {
			if app.Controller == nil {
				return nil, errors.New("controller not configured; set AAP_CONTROLLER_URL")
			}
			return app.Controller.Ping(ctx)
		})

	srv.Tool("controller.templates").
		Description("List launchable job templates on the Automation Controller.").
		Handler(func(ctx context.Context, _ emptyInput) (string, error) {
			if app.Controller == nil {
				return "", errors.New("controller not configured; set AAP_CONTROLLER_URL")
			}

			templates, err := app.Controller.ListJobTemplates(ctx)
			if err != nil {
				return "", err
			}
			if len(templates) == 0 {
				return "No job templates found.", nil
			}

			var b strings.Builder
			for _, tpl := range templates {
				fmt.Fprintf(&b, "- %d: %s [%s]", tpl.ID, tpl.Name, tpl.JobType)
				if tpl.Description != "" {
					fmt.Fprintf(&b, " - %s", tpl.Description)
				}
				b.WriteString("\n")
			}
			return b.String(), nil
		})

	srv.Tool("controller.launch").
		Description("Launch a job template by id, optionally with extra variables.").
		Handler(func(ctx context.Context, input launchInput) (*controller.LaunchedJob, error) {
			if app.Controller == nil {
				return nil, errors.New("controller not configured; set AAP_CONTROLLER_URL")
			}
			return app.Controller.LaunchJobTemplate(ctx, input.TemplateID, input.ExtraVars)
		})

	return nil
}
