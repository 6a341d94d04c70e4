// Package mcp exposes the bridge to LLM agents as MCP tools.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/aapbridge/adapter/cli"
)

// ToolDependencies provides handlers for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterTools registers the collection and controller tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	if err := registerCollectionTools(srv, deps); err != nil {
		return err
	}
	if err := registerControllerTools(srv, deps); err != nil {
		return err
	}
	return nil
}
