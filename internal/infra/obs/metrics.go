package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainpricing "venue/internal/domain/pricing"
)

const (
	outcomeOK       = "ok"
	resultSent      = "sent"
	resultFailed    = "failed"
	metricNamespace = "venue"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer    prometheus.Gatherer
	quotes      *prometheus.CounterVec
	quoteNights prometheus.Histogram
	httpTotal   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
	outbox      *prometheus.CounterVec
	rateLimited prometheus.Counter
}

// NewMetrics registers the service metrics on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		gatherer: reg,
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "quotes_total",
			Help:      "Quote calculations by outcome.",
		}, []string{"outcome"}),
		quoteNights: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "quote_nights",
			Help:      "Length of quoted stays in nights.",
			Buckets:   []float64{1, 2, 3, 5, 7, 14, 30},
		}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "outbox_events_total",
			Help:      "Outbox publish attempts by result.",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "inquiries_rate_limited_total",
			Help:      "Contact form submissions rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(m.quotes, m.quoteNights, m.httpTotal, m.httpLatency, m.outbox, m.rateLimited)
	return m
}

func (m *Metrics) QuoteComputed(q domainpricing.Quote) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(outcomeOK).Inc()
	m.quoteNights.Observe(float64(q.Nights))
}

func (m *Metrics) QuoteRejected(kind domainpricing.ErrorKind) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OutboxSent() {
	if m == nil {
		return
	}
	m.outbox.WithLabelValues(resultSent).Inc()
}

func (m *Metrics) OutboxFailed() {
	if m == nil {
		return
	}
	m.outbox.WithLabelValues(resultFailed).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the exposition format for the registry the metrics live in.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
