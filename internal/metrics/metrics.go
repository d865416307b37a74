package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FeedBalloon = "balloon"
	FeedFire    = "fire"
)

// Metrics holds the Prometheus collectors for scene assembly. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	cacheRequests    *prometheus.CounterVec
	builds           *prometheus.CounterVec
	buildDuration    prometheus.Histogram
	upstreamFailures *prometheus.CounterVec
	flights          prometheus.Gauge
	fires            prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_cache_requests_total",
				Help: "Scene cache reads by result",
			},
			[]string{"result"},
		),
		builds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_builds_total",
				Help: "Scene builds by result",
			},
			[]string{"result"},
		),
		buildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scene_build_duration_seconds",
				Help:    "Time spent assembling a scene",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		upstreamFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_upstream_failures_total",
				Help: "Upstream fetches that were dropped",
			},
			[]string{"feed"},
		),
		flights: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scene_flights",
				Help: "Flights in the most recently built scene",
			},
		),
		fires: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scene_fires",
				Help: "Fires in the most recently built scene",
			},
		),
	}
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}

// BuildFinished records the outcome of one build attempt.
func (m *Metrics) BuildFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(d.Seconds())
}

func (m *Metrics) UpstreamFailure(feed string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(feed).Inc()
}

// SceneSize sets the flight and fire gauges.
func (m *Metrics) SceneSize(flights, fires int) {
	if m == nil {
		return
	}
	m.flights.Set(float64(flights))
	m.fires.Set(float64(fires))
}
