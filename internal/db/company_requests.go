package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rottencompany/internal/models"
)

const companyRequestColumns = `id, name, status, user_id, assigned_moderator_id, assigned_at, created_at`

func scanCompanyRequest(row pgx.Row) (*models.CompanyRequest, error) {
	var req models.CompanyRequest
	err := row.Scan(
		&req.ID,
		&req.Name,
		&req.Status,
		&req.UserID,
		&req.AssignedModeratorID,
		&req.AssignedAt,
		&req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCompanyRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateCompanyRequest inserts a pending request for a new company profile.
func (d *DB) CreateCompanyRequest(ctx context.Context, req *models.CompanyRequest) error {
	return d.Pool.QueryRow(ctx, `
		INSERT INTO company_requests (name, user_id)
		VALUES ($1, $2)
		RETURNING id, status, created_at
	`, req.Name, req.UserID).Scan(&req.ID, &req.Status, &req.CreatedAt)
}

// GetCompanyRequestByID retrieves a single company request.
func (d *DB) GetCompanyRequestByID(ctx context.Context, id int64) (*models.CompanyRequest, error) {
	return scanCompanyRequest(d.Pool.QueryRow(ctx, `SELECT `+companyRequestColumns+` FROM company_requests WHERE id = $1`, id))
}

// ListPendingCompanyRequests returns pending requests, oldest first.
func (d *DB) ListPendingCompanyRequests(ctx context.Context, limit int) ([]models.CompanyRequest, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+companyRequestColumns+` FROM company_requests
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, models.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.CompanyRequest{}
	for rows.Next() {
		var req models.CompanyRequest
		if err := rows.Scan(&req.ID, &req.Name, &req.Status, &req.UserID, &req.AssignedModeratorID, &req.AssignedAt, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// TransitionCompanyRequest applies a moderation action to a pending request and
// appends it to the action log in one transaction. When the action approves the
// request and company is non-nil, the company entity is created as well.
func (d *DB) TransitionCompanyRequest(ctx context.Context, id int64, action *models.ModerationAction, company *models.Entity) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM company_requests WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCompanyRequestNotFound
	}
	if err != nil {
		return err
	}
	if status != models.StatusPending {
		return ErrInvalidTransition
	}

	if action.Action == models.ActionAssign {
		_, err = tx.Exec(ctx, `
			UPDATE company_requests SET assigned_moderator_id = $1, assigned_at = NOW() WHERE id = $2
		`, action.ModeratorID, id)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE company_requests
			SET status = $1,
				assigned_moderator_id = COALESCE(assigned_moderator_id, $2),
				assigned_at = COALESCE(assigned_at, NOW())
			WHERE id = $3
		`, action.ResultingStatus(), action.ModeratorID, id)
	}
	if err != nil {
		return err
	}

	if action.Action == models.ActionApprove && company != nil {
		if err := insertEntity(ctx, tx, company); err != nil {
			return err
		}
	}

	action.TargetType = models.TargetCompanyRequest
	action.TargetID = id
	if err := insertAction(ctx, tx, action); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
