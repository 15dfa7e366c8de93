package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"rottencompany/internal/models"
)

// insertAction appends a moderation action inside an open transaction.
// Actions are never updated or deleted once written.
func insertAction(ctx context.Context, tx pgx.Tx, action *models.ModerationAction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO moderation_actions (action, moderator_id, target_type, target_id, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`,
		action.Action,
		action.ModeratorID,
		action.TargetType,
		action.TargetID,
		action.Note,
	).Scan(&action.ID, &action.CreatedAt)
}

// ListActions returns the moderation history of a target, oldest first.
func (d *DB) ListActions(ctx context.Context, targetType string, targetID int64) ([]models.ModerationAction, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, action, moderator_id, target_type, target_id, note, created_at
		FROM moderation_actions
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at ASC, id ASC
	`, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := []models.ModerationAction{}
	for rows.Next() {
		var a models.ModerationAction
		if err := rows.Scan(&a.ID, &a.Action, &a.ModeratorID, &a.TargetType, &a.TargetID, &a.Note, &a.CreatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
