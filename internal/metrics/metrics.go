package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rottencompany/internal/models"
)

// Notification outcomes.
const (
	OutcomeQueued = "queued"
	OutcomeSent   = "sent"
	OutcomeRetry  = "retry"
	OutcomeFailed = "failed"
)

var (
	pendingDesc = prometheus.NewDesc(
		"rotten_moderation_pending",
		"Rows awaiting moderation by target type",
		[]string{"target_type"},
		nil,
	)
	unassignedDesc = prometheus.NewDesc(
		"rotten_moderation_unassigned",
		"Pending rows with no assigned moderator by target type",
		[]string{"target_type"},
		nil,
	)

	moderationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotten_moderation_actions_total",
		Help: "Moderation actions applied by kind and target type",
	}, []string{"action", "target_type"})

	notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotten_notifications_total",
		Help: "Notification dispatch attempts by outcome",
	}, []string{"outcome"})
)

// GateReader reads the moderation backlog.
type GateReader interface {
	GetGateStatus(ctx context.Context, attentionLimit int) (*models.GateStatus, error)
}

// PendingCollector is a custom Prometheus collector that reads the moderation
// backlog from the database on each scrape.
type PendingCollector struct {
	store GateReader
}

// Describe sends the metric descriptors to the channel.
func (c *PendingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pendingDesc
	ch <- unassignedDesc
}

// Collect queries the backlog and emits it as gauges.
func (c *PendingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := c.store.GetGateStatus(ctx, 0)
	if err != nil {
		slog.Error("failed to collect moderation backlog metrics", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(status.PendingEvidence), models.TargetEvidence)
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(status.PendingCompanyRequests), models.TargetCompanyRequest)
	ch <- prometheus.MustNewConstMetric(unassignedDesc, prometheus.GaugeValue, float64(status.UnassignedEvidence), models.TargetEvidence)
	ch <- prometheus.MustNewConstMetric(unassignedDesc, prometheus.GaugeValue, float64(status.UnassignedCompanyRequests), models.TargetCompanyRequest)
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(store GateReader) {
	initOnce.Do(func() {
		prometheus.MustRegister(&PendingCollector{store: store}, moderationActions, notifications)
	})
}

// RecordModerationAction counts an applied moderation action.
func RecordModerationAction(action, targetType string) {
	moderationActions.WithLabelValues(action, targetType).Inc()
}

// RecordNotification counts a notification dispatch outcome.
func RecordNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
