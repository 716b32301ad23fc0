package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database metrics
var (
	// DBConnectionsOpen is the total number of open connections to the database
	DBConnectionsOpen = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Total number of open database connections",
		},
	)

	// DBConnectionsInUse is the number of database connections currently in use
	DBConnectionsInUse = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of database connections currently in use (acquired)",
		},
	)

	// DBConnectionsIdle is the number of idle database connections
	DBConnectionsIdle = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
	)

	// DBConnectionsMaxOpen is the maximum number of open database connections
	DBConnectionsMaxOpen = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_max_open",
			Help:      "Maximum number of open database connections allowed",
		},
	)

	// DBQueryDuration records database query latency
	DBQueryDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			// Buckets: 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"backend", "operation"},
	)

	// DBErrors counts database errors by type
	DBErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_errors_total",
			Help:      "Total number of database errors",
		},
		[]string{"backend", "operation", "error_type"},
	)
)

// PoolStats is a backend-neutral snapshot of connection pool usage.
type PoolStats struct {
	Open    int
	InUse   int
	Idle    int
	MaxOpen int
}

// PoolStatsProvider is implemented by storage backends.
type PoolStatsProvider interface {
	PoolStats() PoolStats
}

// DBCollector periodically collects database pool statistics
type DBCollector struct {
	source   PoolStatsProvider
	stopChan chan struct{}
}

// NewDBCollector creates a new database metrics collector
func NewDBCollector(source PoolStatsProvider) *DBCollector {
	return &DBCollector{
		source:   source,
		stopChan: make(chan struct{}),
	}
}

// Start collects database metrics at the specified interval until ctx is done
// or Stop is called.
func (c *DBCollector) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector
func (c *DBCollector) Stop() {
	close(c.stopChan)
}

func (c *DBCollector) collect() {
	if c.source == nil {
		return
	}

	stat := c.source.PoolStats()
	DBConnectionsOpen.Set(float64(stat.Open))
	DBConnectionsInUse.Set(float64(stat.InUse))
	DBConnectionsIdle.Set(float64(stat.Idle))
	DBConnectionsMaxOpen.Set(float64(stat.MaxOpen))
}

// RecordQuery records metrics for a database query
// Call this function with defer to capture duration:
//
//	start := time.Now()
//	defer func() { metrics.RecordQuery("postgres", "list_events", start, err) }()
func RecordQuery(backend, operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	DBQueryDuration.WithLabelValues(backend, operation).Observe(duration)

	if err != nil {
		errorType := "query_error"
		switch {
		case errors.Is(err, context.Canceled):
			errorType = "canceled"
		case errors.Is(err, context.DeadlineExceeded):
			errorType = "timeout"
		}
		DBErrors.WithLabelValues(backend, operation, errorType).Inc()
	}
}
