package cli

import (
	"github.com/felixgeelhaar/aapbridge/internal/collections/application/commands"
	"github.com/felixgeelhaar/aapbridge/internal/collections/application/queries"
	"github.com/felixgeelhaar/aapbridge/internal/controller"
)

// App holds the CLI application dependencies.
type App struct {
	// Collection command handlers
	DiscoverHandler           *commands.DiscoverHandler
	InstallCollectionsHandler *commands.InstallCollectionsHandler

	// Collection query handlers
	ListCollectionsHandler    *queries.ListCollectionsHandler
	SearchCollectionsHandler  *queries.SearchCollectionsHandler
	GetCollectionHandler      *queries.GetCollectionHandler
	ListInstallRecordsHandler *queries.ListInstallRecordsHandler

	// Controller is nil when AAP_CONTROLLER_URL is unset.
	Controller *controller.Client
}

var app *App

// SetApp installs the application dependencies for the CLI commands.
func SetApp(a *App) {
	app = a
}

// GetApp returns the installed application, or nil when running without one.
func GetApp() *App {
	return app
}
