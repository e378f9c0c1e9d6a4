// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renoquote_quotes_built_total",
			Help: "Total number of quotes built",
		},
		[]string{"suspicious"},
	)

	SuspiciousQuotes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "renoquote_suspicious_quotes_total",
			Help: "Quotes flagged for human review before release",
		},
	)

	TasksPriced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renoquote_tasks_priced_total",
			Help: "Total number of tasks priced, by catalog category",
		},
		[]string{"category"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "renoquote_stage_duration_seconds",
			Help: "Duration of pipeline stage execution in seconds",
		},
		[]string{"stage"},
	)

	ProviderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renoquote_provider_fallbacks_total",
			Help: "Rate lookups that fell back to the static defaults",
		},
		[]string{"provider", "lookup"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renoquote_notifications_sent_total",
			Help: "Reviewer notifications attempted, by channel and status",
		},
		[]string{"channel", "status"},
	)
)
