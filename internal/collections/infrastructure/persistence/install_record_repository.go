// Package persistence stores collection install records.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
	"github.com/felixgeelhaar/aapbridge/internal/shared/infrastructure/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS collection_installs (
	id TEXT PRIMARY KEY,
	fqcn TEXT NOT NULL,
	version TEXT NOT NULL,
	repository TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	installed_at TIMESTAMP NOT NULL
)`

// InstallRecordRepository implements domain.InstallRecordRepository on the
// shared Executor so it runs on both PostgreSQL and SQLite.
type InstallRecordRepository struct {
	db database.Executor
}

// NewInstallRecordRepository creates the repository and its table.
func NewInstallRecordRepository(ctx context.Context, db database.Executor) (*InstallRecordRepository, error) {
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create collection_installs table: %w", err)
	}
	return &InstallRecordRepository{db: db}, nil
}

// Create persists an install record.
func (r *InstallRecordRepository) Create(ctx context.Context, record *domain.InstallRecord) error {
	query := `INSERT INTO collection_installs (id, fqcn, version, repository, status, message, installed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		record.ID.String(),
		record.FQCN,
		record.Version,
		record.Repository,
		string(record.Status),
		record.Message,
		record.InstalledAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert install record for %s: %w", record.FQCN, err)
	}
	return nil
}

// GetLatestByFQCN returns the most recent record for a collection, or nil
// when it was never installed.
func (r *InstallRecordRepository) GetLatestByFQCN(ctx context.Context, fqcn string) (*domain.InstallRecord, error) {
	query := `SELECT id, fqcn, version, repository, status, message, installed_at
		FROM collection_installs
		WHERE fqcn = $1
		ORDER BY installed_at DESC
		LIMIT 1`

	record, err := scanRecord(r.db.QueryRow(ctx, query, fqcn))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load install record for %s: %w", fqcn, err)
	}
	return record, nil
}

// List returns the most recent install records, newest first. limit <= 0
// returns everything.
func (r *InstallRecordRepository) List(ctx context.Context, limit int) ([]*domain.InstallRecord, error) {
	query := `SELECT id, fqcn, version, repository, status, message, installed_at
		FROM collection_installs
		ORDER BY installed_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list install records: %w", err)
	}
	defer rows.Close()

	var records []*domain.InstallRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan install record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate install records: %w", err)
	}
	return records, nil
}

func scanRecord(row database.Row) (*domain.InstallRecord, error) {
	var (
		id          string
		record      domain.InstallRecord
		status      string
		installedAt time.Time
	)
	if err := row.Scan(&id, &record.FQCN, &record.Version, &record.Repository, &status, &record.Message, &installedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	record.ID = parsed
	record.Status = domain.InstallStatus(status)
	record.InstalledAt = installedAt
	return &record, nil
}
