// Package store defines the interfaces for persisting country records.
// By using an interface, we decouple the job from a specific database
// implementation, allowing for easier testing and flexibility in the future.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasrat/countryscrape/internal/config"
	"github.com/kasrat/countryscrape/internal/scrape"
)

// TableName is the fixed destination table.
const TableName = "countries"

// Row is one persisted country record, including the surrogate id the
// store assigns in insertion order.
type Row struct {
	ID         int64
	Name       string
	Capital    *string
	Population *int64
	Area       *int64
}

// Provider defines the common interface for the persistence layer.
type Provider interface {
	// Init creates the destination table if absent, then removes all
	// existing rows (full refresh). Idempotent. Callers must not write
	// when Init returns an error.
	Init(ctx context.Context) error

	// WriteBatch inserts all given records in one transaction, in order.
	WriteBatch(ctx context.Context, records []scrape.Country) error

	// Sample returns the first n rows ordered by id.
	Sample(ctx context.Context, n int) ([]Row, error)

	// TotalPopulation sums the population column over all rows. The sum
	// is nil when the table is empty or every stored population is NULL.
	TotalPopulation(ctx context.Context) (*int64, error)

	// Close terminates the store handle and releases any resources.
	Close() error
}

// New selects and builds a backend from cfg.
func New(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteProvider(cfg.SQLite.Path, logger)
	case "postgres":
		return NewPostgresProvider(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
