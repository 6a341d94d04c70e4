package app

import "github.com/felixgeelhaar/aapbridge/adapter/cli"

// NewCLIApp projects the container onto the CLI dependency struct.
func NewCLIApp(c *Container) *cli.App {
	return &cli.App{
		DiscoverHandler:           c.DiscoverHandler,
		InstallCollectionsHandler: c.InstallCollectionsHandler,
		ListCollectionsHandler:    c.ListCollectionsHandler,
		SearchCollectionsHandler:  c.SearchCollectionsHandler,
		GetCollectionHandler:      c.GetCollectionHandler,
		ListInstallRecordsHandler: c.ListInstallRecordsHandler,
		Controller:                c.Controller,
	}
}
