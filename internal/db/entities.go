package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"rottencompany/internal/models"
)

const entityColumns = `id, kind, name, slug, description, industry, score,
	employee_count, annual_revenue, created_at, updated_at`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var e models.Entity
	err := row.Scan(
		&e.ID,
		&e.Kind,
		&e.Name,
		&e.Slug,
		&e.Description,
		&e.Industry,
		&e.Score,
		&e.EmployeeCount,
		&e.AnnualRevenue,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func insertEntity(ctx context.Context, q rowQuerier, e *models.Entity) error {
	err := q.QueryRow(ctx, `
		INSERT INTO entities (kind, name, slug, description, industry, employee_count, annual_revenue)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, score, created_at, updated_at
	`,
		e.Kind,
		e.Name,
		e.Slug,
		e.Description,
		e.Industry,
		e.EmployeeCount,
		e.AnnualRevenue,
	).Scan(&e.ID, &e.Score, &e.CreatedAt, &e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

// CreateEntity inserts a new company, leader or manager profile.
func (d *DB) CreateEntity(ctx context.Context, e *models.Entity) error {
	return insertEntity(ctx, d.Pool, e)
}

// GetEntityBySlug retrieves an entity by its unique slug.
func (d *DB) GetEntityBySlug(ctx context.Context, slug string) (*models.Entity, error) {
	return scanEntity(d.Pool.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE slug = $1`, slug))
}

// GetEntityByID retrieves an entity by id.
func (d *DB) GetEntityByID(ctx context.Context, id int64) (*models.Entity, error) {
	return scanEntity(d.Pool.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = $1`, id))
}

// SearchCompanies returns companies whose name contains query, case-insensitively.
func (d *DB) SearchCompanies(ctx context.Context, query string, limit int) ([]models.Entity, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+entityColumns+` FROM entities
		WHERE kind = $1 AND name ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY name ASC
		LIMIT $3
	`, models.TargetCompany, escapeLike(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []models.Entity{}
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(
			&e.ID, &e.Kind, &e.Name, &e.Slug, &e.Description, &e.Industry, &e.Score,
			&e.EmployeeCount, &e.AnnualRevenue, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// TopEntities returns the highest scoring entities.
func (d *DB) TopEntities(ctx context.Context, limit int) ([]models.Entity, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+entityColumns+` FROM entities
		ORDER BY score DESC, name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []models.Entity{}
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(
			&e.ID, &e.Kind, &e.Name, &e.Slug, &e.Description, &e.Industry, &e.Score,
			&e.EmployeeCount, &e.AnnualRevenue, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// RecomputeScores runs the server-side aggregation that rebuilds every entity
// score from approved evidence. Returns the number of entities whose score changed.
func (d *DB) RecomputeScores(ctx context.Context) (int, error) {
	var updated int
	if err := d.Pool.QueryRow(ctx, `SELECT recompute_scores()`).Scan(&updated); err != nil {
		return 0, err
	}
	return updated, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
