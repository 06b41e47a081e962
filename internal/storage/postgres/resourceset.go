// Package postgres implements existence probes against a resource
// index table, for deployments that keep resource metadata next to the
// object store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"solid-service/internal/identifier"
)

// Config holds the connection settings of the index database.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

// ResourceIndex is a pgx-backed ResourceSet over a resources table
// keyed by path.
type ResourceIndex struct {
	pool *pgxpool.Pool
}

// NewResourceIndex connects the pool and verifies the database is
// reachable.
func NewResourceIndex(ctx context.Context, cfg Config) (*ResourceIndex, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode, cfg.MaxConns,
	)
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &ResourceIndex{pool: pool}, nil
}

func (r *ResourceIndex) HasResource(ctx context.Context, id identifier.ResourceIdentifier) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM resources WHERE path = $1)", id.Path,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe resource %s: %w", id.Path, err)
	}
	return exists, nil
}

// Add records a resource in the index. Re-adding is a no-op.
func (r *ResourceIndex) Add(ctx context.Context, id identifier.ResourceIdentifier) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO resources (path) VALUES ($1) ON CONFLICT (path) DO NOTHING", id.Path,
	)
	if err != nil {
		return fmt.Errorf("failed to index resource %s: %w", id.Path, err)
	}
	return nil
}

// Remove drops a resource from the index.
func (r *ResourceIndex) Remove(ctx context.Context, id identifier.ResourceIdentifier) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM resources WHERE path = $1", id.Path)
	if err != nil {
		return fmt.Errorf("failed to unindex resource %s: %w", id.Path, err)
	}
	return nil
}

// Close releases the pool.
func (r *ResourceIndex) Close() {
	r.pool.Close()
}
