// Package metrics holds the Prometheus collectors for predictions and
// round ingest.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ladderscope/internal/pattern"
)

// Operation labels
const (
	OpPredict = "predict"
	OpRank    = "rank"
	OpGroup   = "group"
	OpStats   = "stats"
)

// Outcome labels
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ladderscope_predictions_total",
		Help: "Prediction operations served, by operation and outcome",
	}, []string{"operation", "outcome"})

	predictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ladderscope_prediction_duration_seconds",
		Help:    "Duration of prediction operations including the round fetch",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})

	matchesFound = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ladderscope_matches_found",
		Help:    "Number of block occurrences found per operation",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"operation"})

	roundsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ladderscope_rounds_ingested_total",
		Help: "Rounds written to the store, by source and result",
	}, []string{"source", "result"})

	insufficientTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ladderscope_insufficient_total",
		Help: "Operations that ended with insufficient data",
	}, []string{"operation"})
)

// Timer measures one operation. Call Done exactly once.
type Timer struct {
	op    string
	start time.Time
}

// Start begins timing op.
func Start(op string) *Timer {
	return &Timer{op: op, start: time.Now()}
}

// Done records duration and outcome. Insufficient-data errors are counted
// separately from failures.
func (t *Timer) Done(err error) {
	predictionDuration.WithLabelValues(t.op).Observe(time.Since(t.start).Seconds())
	predictionsTotal.WithLabelValues(t.op, outcome(err)).Inc()
	if errors.Is(err, pattern.ErrInsufficientData) {
		insufficientTotal.WithLabelValues(t.op).Inc()
	}
}

// Insufficient counts an operation that completed but had too little data,
// such as a grouping with too few distinct outcomes.
func Insufficient(op string) {
	insufficientTotal.WithLabelValues(op).Inc()
}

// Matches records how many occurrences an operation found.
func Matches(op string, n int) {
	matchesFound.WithLabelValues(op).Observe(float64(n))
}

// Ingested records rounds written by one batch.
func Ingested(source string, inserted, updated int) {
	roundsIngested.WithLabelValues(source, "inserted").Add(float64(inserted))
	roundsIngested.WithLabelValues(source, "updated").Add(float64(updated))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, pattern.ErrInsufficientData):
		return OutcomeInsufficient
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
