package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
)

const namespace = "roomsched"

// Run outcomes reported in the outcome label.
const (
	OutcomeSuccess     = "success"
	OutcomeInfeasible  = "infeasible"
	OutcomeSolverError = "solver_error"
	OutcomeError       = "error"
)

// Metrics holds the Prometheus collectors of scheduling runs and the HTTP API.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	modelVariables  prometheus.Histogram
	modelConstraint prometheus.Histogram
	searchNodes     prometheus.Histogram
	objective       *prometheus.GaugeVec
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of scheduling runs by strategy and outcome",
	}, []string{"strategy", "outcome"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of scheduling runs",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"strategy"})

	modelVariables := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_variables",
		Help:      "Number of assignment and link variables per model",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	modelConstraint := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_constraints",
		Help:      "Number of constraints per model",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	searchNodes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_nodes",
		Help:      "Branch-and-bound nodes explored per solve",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	objective := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_objective",
		Help:      "Objective value of the last successful run by strategy",
	}, []string{"strategy"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	registry.MustRegister(runsTotal, runDuration, modelVariables, modelConstraint, searchNodes, objective,
		requestDuration, requestTotal, collectors.NewGoCollector())

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		modelVariables:  modelVariables,
		modelConstraint: modelConstraint,
		searchNodes:     searchNodes,
		objective:       objective,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Outcome classifies the error of a run.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, optimizer.ErrInfeasibleModel):
		return OutcomeInfeasible
	case errors.Is(err, optimizer.ErrSolver):
		return OutcomeSolverError
	default:
		return OutcomeError
	}
}

// ObserveRun records a finished scheduling run.
func (m *Metrics) ObserveRun(strategy string, result *optimizer.Result, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(strategy, Outcome(err)).Inc()
	m.runDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if result == nil {
		return
	}
	if result.Stats.Variables > 0 {
		m.modelVariables.Observe(float64(result.Stats.Variables + result.Stats.Links))
		m.modelConstraint.Observe(float64(result.Stats.Constraints.Total()))
		m.searchNodes.Observe(float64(result.Stats.Nodes))
	}
	m.objective.WithLabelValues(strategy).Set(result.Breakdown.Objective)
}

// ObserveHTTPRequest records request metrics.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}
