package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rottencompany/internal/models"
)

// evidenceColumns is the standard column list for evidence queries.
const evidenceColumns = `id, title, summary, file_ref, category, severity, submitter_id,
	target_type, target_id, status, assigned_moderator_id, created_at`

// scanEvidence scans a row into an Evidence struct.
func scanEvidence(row pgx.Row) (*models.Evidence, error) {
	var ev models.Evidence
	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&ev.Summary,
		&ev.FileRef,
		&ev.Category,
		&ev.Severity,
		&ev.SubmitterID,
		&ev.TargetType,
		&ev.TargetID,
		&ev.Status,
		&ev.AssignedModeratorID,
		&ev.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEvidenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// scanEvidenceRows scans multiple rows into a slice of Evidence.
func scanEvidenceRows(rows pgx.Rows) ([]models.Evidence, error) {
	defer rows.Close()

	items := []models.Evidence{}
	for rows.Next() {
		var ev models.Evidence
		if err := rows.Scan(
			&ev.ID,
			&ev.Title,
			&ev.Summary,
			&ev.FileRef,
			&ev.Category,
			&ev.Severity,
			&ev.SubmitterID,
			&ev.TargetType,
			&ev.TargetID,
			&ev.Status,
			&ev.AssignedModeratorID,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	return items, rows.Err()
}

// CreateEvidence inserts a pending evidence row. The target entity must exist
// with a matching kind, otherwise ErrEntityNotFound is returned.
func (d *DB) CreateEvidence(ctx context.Context, ev *models.Evidence) error {
	query := `
		INSERT INTO evidence (title, summary, file_ref, category, severity, submitter_id, target_type, target_id)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::smallint, $6::uuid, $7::text, $8::bigint
		WHERE EXISTS (SELECT 1 FROM entities WHERE id = $8::bigint AND kind = $7::text)
		RETURNING id, status, assigned_moderator_id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		ev.Title,
		ev.Summary,
		ev.FileRef,
		ev.Category,
		ev.Severity,
		ev.SubmitterID,
		ev.TargetType,
		ev.TargetID,
	).Scan(&ev.ID, &ev.Status, &ev.AssignedModeratorID, &ev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEntityNotFound
	}
	return err
}

// GetEvidenceByID retrieves a single evidence row.
func (d *DB) GetEvidenceByID(ctx context.Context, id int64) (*models.Evidence, error) {
	return scanEvidence(d.Pool.QueryRow(ctx, `SELECT `+evidenceColumns+` FROM evidence WHERE id = $1`, id))
}

// ListEvidenceByTarget returns evidence filed against an entity, newest first.
// An empty status matches every status.
func (d *DB) ListEvidenceByTarget(ctx context.Context, targetType string, targetID int64, status string) ([]models.Evidence, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+evidenceColumns+` FROM evidence
		WHERE target_type = $1 AND target_id = $2 AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC, id DESC
	`, targetType, targetID, status)
	if err != nil {
		return nil, err
	}
	return scanEvidenceRows(rows)
}

// ListPendingEvidence returns the review queue, oldest first.
func (d *DB) ListPendingEvidence(ctx context.Context, limit int) ([]models.Evidence, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+evidenceColumns+` FROM evidence
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, models.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	return scanEvidenceRows(rows)
}

// TransitionEvidence applies a moderation action to a pending evidence row and
// appends the action to the log in the same transaction. On success the action's
// ID, target and CreatedAt are filled in.
func (d *DB) TransitionEvidence(ctx context.Context, id int64, action *models.ModerationAction) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM evidence WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEvidenceNotFound
	}
	if err != nil {
		return err
	}
	if status != models.StatusPending {
		return ErrInvalidTransition
	}

	if action.Action == models.ActionAssign {
		_, err = tx.Exec(ctx, `
			UPDATE evidence SET assigned_moderator_id = $1 WHERE id = $2
		`, action.ModeratorID, id)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE evidence
			SET status = $1, assigned_moderator_id = COALESCE(assigned_moderator_id, $2)
			WHERE id = $3
		`, action.ResultingStatus(), action.ModeratorID, id)
	}
	if err != nil {
		return err
	}

	action.TargetType = models.TargetEvidence
	action.TargetID = id
	if err := insertAction(ctx, tx, action); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
