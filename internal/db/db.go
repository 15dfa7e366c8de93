package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"rottencompany/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevEntities inserts sample companies for development. Skips entities that already exist.
func (d *DB) SeedDevEntities(ctx context.Context) error {
	entities := []struct {
		name      string
		slug      string
		industry  string
		employees int64
		revenue   float64
	}{
		{"Acme Corporation", "acme-corporation", "Manufacturing", 12000, 3.2e9},
		{"Acme Widgets", "acme-widgets", "Retail", 90, 4.5e6},
		{"Globex", "globex", "Energy", 56000, 2.1e10},
		{"Initech", "initech", "Software", 800, 1.2e8},
		{"Umbrella Holdings", "umbrella-holdings", "Pharmaceuticals", 140000, 9.8e10},
	}

	query := `
		INSERT INTO entities (kind, name, slug, industry, employee_count, annual_revenue)
		VALUES ('company', $1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`

	for _, e := range entities {
		if _, err := d.Pool.Exec(ctx, query, e.name, e.slug, e.industry, e.employees, e.revenue); err != nil {
			return fmt.Errorf("failed to seed entity %s: %w", e.slug, err)
		}
	}

	return nil
}
