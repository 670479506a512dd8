package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records counters for the location flow and checkout.
type StorefrontMetrics struct {
	geocodeDispatched *prometheus.CounterVec
	geocodeDiscarded  *prometheus.CounterVec
	geocodeFallback   prometheus.Counter
	ordersPlaced      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	geocodeDispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_dispatched_total",
		Help: "Reverse-geocode requests dispatched after debounce.",
	}, []string{"trigger"})
	geocodeDiscarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_discarded_total",
		Help: "Reverse-geocode results discarded as superseded or stale.",
	}, []string{"reason"})
	geocodeFallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geocode_fallback_total",
		Help: "Reverse-geocode failures served with a synthetic coordinate label.",
	})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted by the backend, by customer kind.",
	}, []string{"kind"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reg.MustRegister(geocodeDispatched, geocodeDiscarded, geocodeFallback, ordersPlaced, requestDuration)
	return &StorefrontMetrics{
		geocodeDispatched: geocodeDispatched,
		geocodeDiscarded:  geocodeDiscarded,
		geocodeFallback:   geocodeFallback,
		ordersPlaced:      ordersPlaced,
		requestDuration:   requestDuration,
	}
}

// IncGeocodeDispatched counts a dispatched reverse geocode by trigger source.
func (m *StorefrontMetrics) IncGeocodeDispatched(trigger string) {
	if m == nil || m.geocodeDispatched == nil {
		return
	}
	m.geocodeDispatched.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncGeocodeDiscarded counts a discarded reverse-geocode result.
func (m *StorefrontMetrics) IncGeocodeDiscarded(reason string) {
	if m == nil || m.geocodeDiscarded == nil {
		return
	}
	m.geocodeDiscarded.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncGeocodeFallback counts a synthetic-label fallback.
func (m *StorefrontMetrics) IncGeocodeFallback() {
	if m == nil || m.geocodeFallback == nil {
		return
	}
	m.geocodeFallback.Inc()
}

// IncOrdersPlaced counts an accepted order by customer kind (profile/guest).
func (m *StorefrontMetrics) IncOrdersPlaced(kind string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveRequestDuration records an API request duration for the route label.
func (m *StorefrontMetrics) ObserveRequestDuration(route string, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(route)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
