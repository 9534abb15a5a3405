package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theoremus-urban-solutions/mnr-arrivals/warnings"
)

// Cycle outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFetchError  = "fetch_error"
	OutcomeDecodeError = "decode_error"
	OutcomeStaticError = "static_error"
)

// Collector owns a private registry so tests and multiple servers do not
// collide on the global one.
type Collector struct {
	reg *prometheus.Registry

	Cycles           *prometheus.CounterVec // outcome label
	Records          prometheus.Gauge
	Untracked        prometheus.Gauge
	ScheduleWarnings *prometheus.CounterVec // type label
	FetchDuration    prometheus.Histogram
	CombineDuration  prometheus.Histogram
	FeedAge          prometheus.Gauge // seconds
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_cycles_total",
			Help: "Board computations by outcome.",
		}, []string{"outcome"}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_records",
			Help: "Combined records in the last board.",
		}),
		Untracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_untracked_scheduled_trains",
			Help: "Scheduled trains in the last board without a live vehicle.",
		}),
		ScheduleWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_data_warnings_total",
			Help: "Data-quality warnings by type.",
		}, []string{"type"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrivals_feed_fetch_duration_seconds",
			Help:    "Duration of realtime feed fetches.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		CombineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrivals_combine_duration_seconds",
			Help:    "Duration of decode, correlation, selection and schedule join.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		FeedAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_feed_age_seconds",
			Help: "Age of the last decoded feed header timestamp.",
		}),
	}

	reg.MustRegister(
		c.Cycles, c.Records, c.Untracked, c.ScheduleWarnings,
		c.FetchDuration, c.CombineDuration, c.FeedAge,
	)
	return c
}

// ObserveCycle records an outcome.
func (c *Collector) ObserveCycle(outcome string) {
	c.Cycles.WithLabelValues(outcome).Inc()
}

// ObserveWarnings adds every warning type count.
func (c *Collector) ObserveWarnings(w *warnings.Aggregator) {
	for _, s := range w.Summaries() {
		c.ScheduleWarnings.WithLabelValues(s.Type).Add(float64(s.Count))
	}
}

// ObserveFeedAge sets the feed age relative to now. Zero timestamps are ignored.
func (c *Collector) ObserveFeedAge(feedTS, now time.Time) {
	if feedTS.IsZero() {
		return
	}
	c.FeedAge.Set(now.Sub(feedTS).Seconds())
}

// Registry exposes the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
