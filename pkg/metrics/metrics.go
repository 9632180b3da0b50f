package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Appointment metrics
	AppointmentMutations *prometheus.CounterVec

	// Listing cache metrics
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheInvalidations *prometheus.CounterVec

	// Notification metrics
	NotificationsSent *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them on reg.
// A nil reg leaves them unregistered, which suits tests.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AppointmentMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "mutations_total",
			Help:      "Total number of appointment create, update and delete calls",
		}, []string{"operation", "status"}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing_cache",
			Name:      "hits_total",
			Help:      "Appointment listings served from the cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing_cache",
			Name:      "misses_total",
			Help:      "Appointment listings loaded from the database",
		}),
		CacheInvalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing_cache",
			Name:      "invalidations_total",
			Help:      "Listing cache invalidations by origin",
		}, []string{"origin"}),

		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Appointment notification e-mails by outcome",
		}, []string{"status"}),
	}
}

// Status labels a counter with the outcome of err.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
