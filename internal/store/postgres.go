package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kasrat/countryscrape/internal/config"
	"github.com/kasrat/countryscrape/internal/scrape"
)

// pgxPool is the subset of pgxpool.Pool the provider uses. pgxmock
// satisfies it, which is how the provider is unit tested.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresProvider implements Provider on a shared Postgres database.
// The SQLite backend remains the default; this exists for deployments
// where several consumers read the refreshed table.
type PostgresProvider struct {
	pool   pgxPool
	logger *zap.Logger
}

// NewPostgresProvider connects a pool using cfg and pings it.
func NewPostgresProvider(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresProvider, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.postgres.dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("Connected to Postgres store")
	return &PostgresProvider{pool: pool, logger: logger}, nil
}

// NewPostgresProviderWithPool constructs a provider from an existing
// pool (primarily for testing).
func NewPostgresProviderWithPool(pool pgxPool, logger *zap.Logger) (*PostgresProvider, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresProvider{pool: pool, logger: logger}, nil
}

const createCountriesDDL = `CREATE TABLE IF NOT EXISTS countries (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	country_name TEXT NOT NULL,
	capital TEXT,
	population BIGINT,
	area BIGINT
)`

// Init creates the table if absent and clears prior contents.
func (p *PostgresProvider) Init(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createCountriesDDL); err != nil {
		return fmt.Errorf("migrate %s: %w", TableName, err)
	}
	if _, err := p.pool.Exec(ctx, `DELETE FROM countries`); err != nil {
		return fmt.Errorf("clear %s: %w", TableName, err)
	}
	return nil
}

// WriteBatch inserts all records inside one transaction.
func (p *PostgresProvider) WriteBatch(ctx context.Context, records []scrape.Country) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	const insertSQL = `INSERT INTO countries (country_name, capital, population, area) VALUES ($1, $2, $3, $4)`
	for _, r := range records {
		if _, err := tx.Exec(ctx, insertSQL, r.Name, r.Capital, r.Population, r.Area); err != nil {
			return fmt.Errorf("insert into %s: %w", TableName, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert transaction: %w", err)
	}
	p.logger.Info("Stored country records", zap.Int("count", len(records)))
	return nil
}

// Sample returns the first n rows ordered by id.
func (p *PostgresProvider) Sample(ctx context.Context, n int) ([]Row, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, country_name, capital, population, area FROM countries ORDER BY id LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", TableName, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Name, &r.Capital, &r.Population, &r.Area); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", TableName, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", TableName, err)
	}
	return out, nil
}

// TotalPopulation sums the population column; NULL stays NULL.
func (p *PostgresProvider) TotalPopulation(ctx context.Context) (*int64, error) {
	var total *int64
	err := p.pool.QueryRow(ctx, `SELECT SUM(population) FROM countries`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("sum population: %w", err)
	}
	return total, nil
}

// Close releases the underlying pool resources.
func (p *PostgresProvider) Close() error {
	p.pool.Close()
	return nil
}
