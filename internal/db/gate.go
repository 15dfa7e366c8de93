package db

import (
	"context"

	"rottencompany/internal/models"
)

// GetGateStatus reads pending counts and the oldest unassigned pending items.
// Blocked is left for the caller to decide.
func (d *DB) GetGateStatus(ctx context.Context, attentionLimit int) (*models.GateStatus, error) {
	status := &models.GateStatus{Attention: []models.GateItem{}}

	err := d.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM evidence WHERE status = $1),
			(SELECT COUNT(*) FROM evidence WHERE status = $1 AND assigned_moderator_id IS NULL),
			(SELECT COUNT(*) FROM company_requests WHERE status = $1),
			(SELECT COUNT(*) FROM company_requests WHERE status = $1 AND assigned_moderator_id IS NULL)
	`, models.StatusPending).Scan(
		&status.PendingEvidence,
		&status.UnassignedEvidence,
		&status.PendingCompanyRequests,
		&status.UnassignedCompanyRequests,
	)
	if err != nil {
		return nil, err
	}

	if attentionLimit <= 0 || status.UnassignedEvidence+status.UnassignedCompanyRequests == 0 {
		return status, nil
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT target_type, target_id, title, created_at FROM (
			SELECT $1::text AS target_type, id AS target_id, title, created_at
			FROM evidence WHERE status = $3 AND assigned_moderator_id IS NULL
			UNION ALL
			SELECT $2::text, id, name, created_at
			FROM company_requests WHERE status = $3 AND assigned_moderator_id IS NULL
		) pending
		ORDER BY created_at ASC, target_id ASC
		LIMIT $4
	`, models.TargetEvidence, models.TargetCompanyRequest, models.StatusPending, attentionLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.GateItem
		if err := rows.Scan(&item.TargetType, &item.TargetID, &item.Title, &item.CreatedAt); err != nil {
			return nil, err
		}
		status.Attention = append(status.Attention, item)
	}
	return status, rows.Err()
}
