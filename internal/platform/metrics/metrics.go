// Package metrics agrupa los collectors de Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pet-companion-chat/internal/domain/lifecycle"
)

type Metrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	evolutions      *prometheus.CounterVec
	runAways        prometheus.Counter
	reconciliations *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registra los collectors en reg. Con reg == nil se usa un registry propio
// (útil en tests, donde el registry global ya puede tenerlos).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_rate_limited_total",
			Help: "Chat requests rejected by the rate limiter",
		}),
		evolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pet_evolutions_total",
				Help: "Pet evolutions applied at session start",
			},
			[]string{"from", "to"},
		),
		runAways: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pet_run_aways_total",
			Help: "Pets that ran away after their friendship reached zero",
		}),
		reconciliations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pet_reconciliations_total",
				Help: "Session reconciliations by consistency of the returned trainer",
			},
			[]string{"consistency"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.rateLimited, m.evolutions, m.runAways, m.reconciliations)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Handler expone /metrics para el registry donde se registraron los collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) RateLimited() { m.rateLimited.Inc() }

// Los siguientes implementan session.Observer.

func (m *Metrics) Evolved(from, to int) {
	m.evolutions.WithLabelValues(strconv.Itoa(from), strconv.Itoa(to)).Inc()
}

func (m *Metrics) RanAway() { m.runAways.Inc() }

func (m *Metrics) Reconciled(c lifecycle.Consistency) {
	m.reconciliations.WithLabelValues(string(c)).Inc()
}
