package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"rottencompany/internal/models"
)

// claimLease is how long a claimed job stays invisible to other workers.
const claimLease = 5 * time.Minute

const notificationColumns = `id, recipient, subject, body, metadata, status, attempts,
	last_error, next_attempt_at, sent_at, created_at`

func scanNotificationJobs(rows pgx.Rows) ([]models.NotificationJob, error) {
	defer rows.Close()

	jobs := []models.NotificationJob{}
	for rows.Next() {
		var j models.NotificationJob
		if err := rows.Scan(
			&j.ID, &j.Recipient, &j.Subject, &j.Body, &j.Metadata, &j.Status, &j.Attempts,
			&j.LastError, &j.NextAttemptAt, &j.SentAt, &j.CreatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// EnqueueNotification stores a pending notification job.
func (d *DB) EnqueueNotification(ctx context.Context, job *models.NotificationJob) error {
	if job.Metadata == nil {
		job.Metadata = map[string]string{}
	}
	return d.Pool.QueryRow(ctx, `
		INSERT INTO notification_jobs (recipient, subject, body, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, attempts, next_attempt_at, created_at
	`, job.Recipient, job.Subject, job.Body, job.Metadata).Scan(
		&job.ID, &job.Status, &job.Attempts, &job.NextAttemptAt, &job.CreatedAt,
	)
}

// GetNotificationJob retrieves a notification job by id.
func (d *DB) GetNotificationJob(ctx context.Context, id int64) (*models.NotificationJob, error) {
	rows, err := d.Pool.Query(ctx, `SELECT `+notificationColumns+` FROM notification_jobs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	jobs, err := scanNotificationJobs(rows)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotificationJobNotFound
	}
	return &jobs[0], nil
}

// ClaimNotificationJobs locks up to limit due jobs, bumps their attempt counter and
// pushes next_attempt_at out by the claim lease so a crashed worker's jobs are retried later.
func (d *DB) ClaimNotificationJobs(ctx context.Context, limit int) ([]models.NotificationJob, error) {
	rows, err := d.Pool.Query(ctx, `
		UPDATE notification_jobs
		SET attempts = attempts + 1, next_attempt_at = $3
		WHERE id IN (
			SELECT id FROM notification_jobs
			WHERE status = $1 AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		RETURNING `+notificationColumns,
		models.NotificationPending, limit, time.Now().Add(claimLease))
	if err != nil {
		return nil, err
	}
	return scanNotificationJobs(rows)
}

// MarkNotificationSent records a successful delivery.
func (d *DB) MarkNotificationSent(ctx context.Context, id int64) error {
	return d.finishNotification(ctx, `
		UPDATE notification_jobs SET status = $1, sent_at = NOW(), last_error = NULL WHERE id = $2
	`, models.NotificationSent, id)
}

// MarkNotificationFailed gives up on a job after its final attempt.
func (d *DB) MarkNotificationFailed(ctx context.Context, id int64, reason string) error {
	return d.finishNotification(ctx, `
		UPDATE notification_jobs SET status = $1, last_error = $3 WHERE id = $2
	`, models.NotificationFailed, id, reason)
}

// RescheduleNotification leaves a job pending and sets its next attempt time.
func (d *DB) RescheduleNotification(ctx context.Context, id int64, reason string, next time.Time) error {
	return d.finishNotification(ctx, `
		UPDATE notification_jobs SET status = $1, last_error = $3, next_attempt_at = $4 WHERE id = $2
	`, models.NotificationPending, id, reason, next)
}

func (d *DB) finishNotification(ctx context.Context, query string, args ...any) error {
	result, err := d.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationJobNotFound
	}
	return nil
}

// CountNotificationsByStatus returns job counts keyed by status.
func (d *DB) CountNotificationsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := d.Pool.Query(ctx, `SELECT status, COUNT(*) FROM notification_jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
