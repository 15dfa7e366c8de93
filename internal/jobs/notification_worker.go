package jobs

import (
	"context"
	"log"
	"log/slog"
	"time"

	"rottencompany/internal/metrics"
	"rottencompany/internal/models"
)

// Retry schedule for failed deliveries.
const (
	BaseBackoff = 30 * time.Second
	MaxBackoff  = time.Hour
	batchSize   = 20
)

// NotificationStore is the outbox persistence the worker drives.
type NotificationStore interface {
	ClaimNotificationJobs(ctx context.Context, limit int) ([]models.NotificationJob, error)
	MarkNotificationSent(ctx context.Context, id int64) error
	MarkNotificationFailed(ctx context.Context, id int64, reason string) error
	RescheduleNotification(ctx context.Context, id int64, reason string, next time.Time) error
}

// Deliverer sends a single notification.
type Deliverer interface {
	Deliver(recipient, subject, body string) error
}

// NotificationWorker drains the notification outbox.
type NotificationWorker struct {
	store       NotificationStore
	deliverer   Deliverer
	interval    time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewNotificationWorker creates a worker polling every interval.
// Jobs are marked failed once they have been attempted maxAttempts times.
func NewNotificationWorker(store NotificationStore, deliverer Deliverer, interval time.Duration, maxAttempts int) *NotificationWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &NotificationWorker{
		store:       store,
		deliverer:   deliverer,
		interval:    interval,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Start runs the polling loop until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	log.Printf("Notification worker started (interval: %v, max attempts: %d)", w.interval, w.maxAttempts)

	// Run immediately on start
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce claims and processes batches until the outbox has nothing due.
// Returns the number of jobs processed.
func (w *NotificationWorker) RunOnce(ctx context.Context) int {
	processed := 0
	for {
		if ctx.Err() != nil {
			return processed
		}

		jobs, err := w.store.ClaimNotificationJobs(ctx, batchSize)
		if err != nil {
			slog.Error("failed to claim notification jobs", "error", err)
			return processed
		}
		if len(jobs) == 0 {
			return processed
		}

		for i := range jobs {
			w.process(ctx, &jobs[i])
			processed++
		}

		if len(jobs) < batchSize {
			return processed
		}
	}
}

// process delivers one claimed job. Attempts already includes this attempt.
func (w *NotificationWorker) process(ctx context.Context, job *models.NotificationJob) {
	err := w.deliverer.Deliver(job.Recipient, job.Subject, job.Body)
	if err == nil {
		if err := w.store.MarkNotificationSent(ctx, job.ID); err != nil {
			slog.Error("failed to mark notification sent", "job_id", job.ID, "error", err)
		}
		metrics.RecordNotification(metrics.OutcomeSent)
		return
	}

	reason := err.Error()
	if job.Attempts >= w.maxAttempts {
		slog.Warn("notification permanently failed", "job_id", job.ID, "recipient", job.Recipient, "attempts", job.Attempts, "error", err)
		if err := w.store.MarkNotificationFailed(ctx, job.ID, reason); err != nil {
			slog.Error("failed to mark notification failed", "job_id", job.ID, "error", err)
		}
		metrics.RecordNotification(metrics.OutcomeFailed)
		return
	}

	next := w.now().Add(Backoff(job.Attempts))
	slog.Info("notification delivery failed, retrying", "job_id", job.ID, "attempts", job.Attempts, "next_attempt_at", next, "error", err)
	if err := w.store.RescheduleNotification(ctx, job.ID, reason, next); err != nil {
		slog.Error("failed to reschedule notification", "job_id", job.ID, "error", err)
	}
	metrics.RecordNotification(metrics.OutcomeRetry)
}

// Backoff returns the delay after the given failed attempt:
// BaseBackoff doubled per prior attempt, capped at MaxBackoff.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= MaxBackoff {
			return MaxBackoff
		}
	}
	return d
}
