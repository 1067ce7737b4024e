package insights

import (
	"feed-notifier/models/entities"
	"feed-notifier/pkg/observer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewMetrics registers the feed update metrics on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		feedUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "feed_updates_total",
			Help:      "The total number of feed updates, by feed kind and outcome",
		}, []string{"kind", "outcome"}),
		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "feed_update_duration_seconds",
			Help:      "Duration of feed updates, from fetch to commit",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // Start at 10ms, double each bucket, 12 buckets
		}, []string{"kind"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_written_total",
			Help:      "The total number of notifications written to the store",
		}, []string{"kind"}),
		pendingUpdates: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_feed_updates",
			Help:      "The number of feed updates queued or running",
		}),
		batchSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_batch_size",
			Help:      "The number of feeds in the last completed batch",
		}),
		purgedRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "purged_notifications_total",
			Help:      "The total number of expired notifications purged",
		}),
	}
}

func (metrics *Metrics) OnNotify(e observer.Event) {
	metrics.pendingUpdates.Set(float64(e.Pending))

	switch e.E {
	case observer.FeedUpdatedEvent:
		metrics.feedUpdates.WithLabelValues(kindLabel(e.Kind), outcomeSuccess).Inc()
		metrics.updateDuration.WithLabelValues(kindLabel(e.Kind)).Observe(e.Duration.Seconds())
		metrics.notifications.WithLabelValues(kindLabel(e.Kind)).Add(float64(e.Notifications))
	case observer.FeedFailedEvent:
		metrics.feedUpdates.WithLabelValues(kindLabel(e.Kind), outcomeFailure).Inc()
		metrics.updateDuration.WithLabelValues(kindLabel(e.Kind)).Observe(e.Duration.Seconds())
	case observer.BatchCompletedEvent:
		metrics.batchSize.Set(float64(e.Count))
	case observer.RecordsPurgedEvent:
		metrics.purgedRecords.Add(float64(e.Count))
	}
}

func kindLabel(kind entities.FeedKind) string {
	if kind == entities.FeedKindUnknown {
		return "unknown"
	}
	return string(kind)
}
