// Package metrics exposes tournament progression counters and HTTP timings to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tichu"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	roundsStarted   *prometheus.CounterVec
	scoreSubmits    *prometheus.CounterVec
	confirmations   *prometheus.CounterVec
	finished        prometheus.Counter
	unpairedTeams   prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		roundsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Rounds created, by pairing method.",
		}, []string{"pairing"}),
		scoreSubmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Game score submissions, by outcome.",
		}, []string{"outcome"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_confirmations_total",
			Help:      "Confirm and unconfirm actions on matches.",
		}, []string{"action"}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_finished_total",
			Help:      "Tournaments moved to completed.",
		}),
		unpairedTeams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpaired_teams_total",
			Help:      "Teams left without an opponent when a round was paired.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.roundsStarted,
		m.scoreSubmits,
		m.confirmations,
		m.finished,
		m.unpairedTeams,
		m.requestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) RoundStarted(pairing string, unpaired int) {
	if m == nil {
		return
	}
	m.roundsStarted.WithLabelValues(pairing).Inc()
	m.unpairedTeams.Add(float64(unpaired))
}

func (m *Metrics) ScoreSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.scoreSubmits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MatchConfirmation(action string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(action).Inc()
}

func (m *Metrics) TournamentFinished() {
	if m == nil {
		return
	}
	m.finished.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request latency labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
