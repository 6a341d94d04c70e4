package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds connection settings for either backend.
type Config struct {
	// URL is the PostgreSQL connection string. Empty selects SQLite.
	URL string

	// SQLitePath is the SQLite database file. Defaults to
	// ~/.aapbridge/data.db.
	SQLitePath string

	// MaxConns limits the PostgreSQL pool size.
	MaxConns int
}

// NewConnection opens a connection for the driver detected from cfg.URL.
// The concrete driver packages register themselves via init; the composition
// root blank-imports them.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := DetectDriver(cfg.URL)

	switch driver {
	case DriverPostgres:
		if newPostgresConnection == nil {
			return nil, fmt.Errorf("postgres driver not registered")
		}
		return newPostgresConnection(ctx, cfg)
	case DriverSQLite:
		if newSQLiteConnection == nil {
			return nil, fmt.Errorf("sqlite driver not registered")
		}
		return newSQLiteConnection(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// DefaultSQLitePath returns the local database location.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".aapbridge", "data.db")
}

// EnsureDirectory creates the parent directory for a file path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

var (
	newPostgresConnection func(ctx context.Context, cfg Config) (Connection, error)
	newSQLiteConnection   func(ctx context.Context, cfg Config) (Connection, error)
)

// RegisterPostgresDriver wires the PostgreSQL factory. Called from the
// postgres package init to avoid an import cycle.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newPostgresConnection = fn
}

// RegisterSQLiteDriver wires the SQLite factory.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	newSQLiteConnection = fn
}
