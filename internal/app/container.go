// Package app wires configuration, infrastructure and handlers together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/aapbridge/internal/collections/application/commands"
	"github.com/felixgeelhaar/aapbridge/internal/collections/application/queries"
	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/internal/collections/infrastructure/galaxycli"
	"github.com/felixgeelhaar/aapbridge/internal/collections/infrastructure/galaxyhub"
	"github.com/felixgeelhaar/aapbridge/internal/collections/infrastructure/persistence"
	"github.com/felixgeelhaar/aapbridge/internal/controller"
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/aapapi"
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/database/postgres" // register driver
	_ "github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/database/sqlite"   // register driver
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/aapbridge/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DBConn         database.Connection
	EventPublisher eventbus.Publisher

	// Hub is nil when the hub integration is disabled or unconfigured.
	Hub *galaxyhub.Client

	// Controller is nil when AAP_CONTROLLER_URL is unset.
	Controller *controller.Client

	InstallRecordRepo domain.InstallRecordRepository

	// Command handlers
	DiscoverHandler           *commands.DiscoverHandler
	InstallCollectionsHandler *commands.InstallCollectionsHandler

	// Query handlers
	ListCollectionsHandler    *queries.ListCollectionsHandler
	SearchCollectionsHandler  *queries.SearchCollectionsHandler
	GetCollectionHandler      *queries.GetCollectionHandler
	ListInstallRecordsHandler *queries.ListInstallRecordsHandler
}

// NewContainer builds the dependency graph. Optional integrations (hub,
// controller, RabbitMQ) degrade to nil or no-op instead of failing startup.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.DBConn = conn
	logger.Info("database connected", "driver", conn.Driver())

	recordRepo, err := persistence.NewInstallRecordRepository(ctx, conn)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.InstallRecordRepo = recordRepo

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.EventPublisher = publisher
	} else {
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
	}

	if cfg.HubEnabled {
		hub, err := galaxyhub.NewClient(galaxyhub.Config{
			BaseURL:        cfg.HubURL,
			APIPrefix:      cfg.HubAPIPrefix,
			Token:          cfg.HubToken,
			Username:       cfg.HubUsername,
			Password:       cfg.HubPassword,
			VerifySSL:      cfg.HubVerifySSL,
			CABundle:       cfg.HubCABundle,
			Timeout:        cfg.RequestTimeout,
			BreakerEnabled: cfg.BreakerEnabled,
		}, logger)
		switch {
		case err == nil:
			c.Hub = hub
		case errors.Is(err, aapapi.ErrNotConfigured):
			logger.Info("automation hub not configured; discovery disabled")
		default:
			c.Close()
			return nil, fmt.Errorf("failed to create hub client: %w", err)
		}
	} else {
		logger.Info("automation hub integration disabled")
	}

	if cfg.ControllerURL != "" {
		ctrl, err := controller.NewClient(controller.Config{
			BaseURL:        cfg.ControllerURL,
			Token:          cfg.ControllerToken,
			ClientID:       cfg.ControllerClientID,
			ClientSecret:   cfg.ControllerClientSecret,
			VerifySSL:      cfg.ControllerVerifySSL,
			CABundle:       cfg.ControllerCABundle,
			Timeout:        cfg.RequestTimeout,
			BreakerEnabled: cfg.BreakerEnabled,
		}, logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create controller client: %w", err)
		}
		c.Controller = ctrl
	}

	installer := galaxycli.NewRunner(cfg.GalaxyBinary, cfg.CollectionsPath, logger)

	// A nil *galaxyhub.Client wrapped in the interface would defeat the
	// handlers' nil checks; only assign when the client exists.
	var source domain.Source
	var hubSource commands.HubSource
	if c.Hub != nil {
		source = c.Hub
		hubSource = c.Hub
	}

	c.DiscoverHandler = commands.NewDiscoverHandler(source, c.EventPublisher, logger)
	c.InstallCollectionsHandler = commands.NewInstallCollectionsHandler(
		hubSource,
		installer,
		recordRepo,
		c.EventPublisher,
		cfg.PublicGalaxyURL,
		cfg.DownloadDir,
		logger,
	)

	c.ListCollectionsHandler = queries.NewListCollectionsHandler(source)
	c.SearchCollectionsHandler = queries.NewSearchCollectionsHandler(source)
	c.GetCollectionHandler = queries.NewGetCollectionHandler(source)
	c.ListInstallRecordsHandler = queries.NewListInstallRecordsHandler(recordRepo)

	return c, nil
}

// Close releases held resources. Safe to call on a partially built container.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("failed to close database", "error", err)
		}
	}
}
