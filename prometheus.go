package refrain

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsCollector implements MetricsCollector on top of a
// Prometheus registry.
type PrometheusMetricsCollector struct {
	adds             prometheus.Counter
	rebuilds         *prometheus.CounterVec
	rebuildDuration  prometheus.Histogram
	repairs          prometheus.Counter
	removes          *prometheus.CounterVec
	recommends       *prometheus.CounterVec
	recommendResults prometheus.Counter
	recommendLatency prometheus.Histogram
}

// NewPrometheusMetricsCollector registers the refrain metrics with reg and
// returns the collector. Pass prometheus.DefaultRegisterer to use the
// process-wide registry.
func NewPrometheusMetricsCollector(reg prometheus.Registerer) *PrometheusMetricsCollector {
	factory := promauto.With(reg)
	return &PrometheusMetricsCollector{
		adds: factory.NewCounter(prometheus.CounterOpts{
			Name: "refrain_songs_added_total",
			Help: "Total number of songs added to the graph",
		}),
		rebuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "refrain_rebuilds_total",
			Help: "Total number of rebuild passes",
		}, []string{"status"}),
		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "refrain_rebuild_duration_seconds",
			Help:    "Duration of rebuild passes in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}),
		repairs: factory.NewCounter(prometheus.CounterOpts{
			Name: "refrain_repairs_total",
			Help: "Total number of standalone repair passes",
		}),
		removes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "refrain_removes_total",
			Help: "Total number of song removals",
		}, []string{"status"}),
		recommends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "refrain_recommend_queries_total",
			Help: "Total number of recommendation queries",
		}, []string{"status"}),
		recommendResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "refrain_recommend_results_total",
			Help: "Total number of recommendations delivered",
		}),
		recommendLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "refrain_recommend_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordAdd implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordAdd(time.Duration) {
	p.adds.Inc()
}

// RecordRebuild implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordRebuild(songs int, duration time.Duration, err error) {
	p.rebuilds.WithLabelValues(status(err)).Inc()
	p.rebuildDuration.Observe(duration.Seconds())
}

// RecordRepair implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordRepair(time.Duration) {
	p.repairs.Inc()
}

// RecordRemove implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordRemove(duration time.Duration, err error) {
	p.removes.WithLabelValues(status(err)).Inc()
}

// RecordRecommend implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordRecommend(n, results int, duration time.Duration, err error) {
	p.recommends.WithLabelValues(status(err)).Inc()
	p.recommendResults.Add(float64(results))
	p.recommendLatency.Observe(duration.Seconds())
}
