// Package metrics provides Prometheus metrics for file trees.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tree metrics
	treeNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_nodes",
			Help: "Number of live nodes across all trees in the process",
		},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_mutations_total",
			Help: "Total tree operations by operation and result status",
		},
		[]string{"op", "status"},
	)

	// Checker metrics
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_checks_total",
			Help: "Total invariant checks by scope and result",
		},
		[]string{"scope", "result"},
	)

	checkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filetree_check_duration_seconds",
			Help:    "Whole-tree validation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// AddNodes adjusts the live node gauge by delta (negative on removal).
func AddNodes(delta int) {
	treeNodes.Add(float64(delta))
}

// RecordMutation records the outcome of a tree operation. status is the
// taxonomy name, i.e. "SUCCESS" or "ALREADY_IN_TREE".
func RecordMutation(op, status string) {
	mutationsTotal.WithLabelValues(op, status).Inc()
}

// RecordCheck records an invariant check result.
func RecordCheck(scope string, valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	checksTotal.WithLabelValues(scope, result).Inc()
}

// RecordCheckDuration records how long a whole-tree validation took.
func RecordCheckDuration(d time.Duration) {
	checkDuration.Observe(d.Seconds())
}
