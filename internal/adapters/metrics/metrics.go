package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const namespace = "kanso"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	effects      *prometheus.CounterVec
	xpGained     *prometheus.CounterVec
	xpLost       *prometheus.CounterVec
	levelChanges prometheus.Counter
	paidCents    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		effects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "progress",
				Name:      "effects_total",
				Help:      "Committed transition effects by kind.",
			},
			[]string{"kind"},
		),
		xpGained: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "xp_gained_total",
				Help:      "XP awarded by source type.",
			},
			[]string{"source"},
		),
		xpLost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "xp_lost_total",
				Help:      "XP removed by penalties, by source type.",
			},
			[]string{"source"},
		),
		levelChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "level_changes_total",
				Help:      "Number of awards that moved a user to another tier.",
			},
		),
		paidCents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "finance",
				Name:      "installments_paid_cents_total",
				Help:      "Sum of paid installment amounts in cents.",
			},
		),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.effects,
		m.xpGained,
		m.xpLost,
		m.levelChanges,
		m.paidCents,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Handle records a committed effect; it is registered on the effect worker.
func (m *Metrics) Handle(ctx context.Context, effect domain.Effect) error {
	m.effects.WithLabelValues(string(effect.Kind)).Inc()

	switch effect.Kind {
	case domain.EffectXPAwarded:
		source := string(effect.SourceType)
		if effect.Amount >= 0 {
			m.xpGained.WithLabelValues(source).Add(float64(effect.Amount))
		} else {
			m.xpLost.WithLabelValues(source).Add(float64(-effect.Amount))
		}
	case domain.EffectLevelChanged:
		m.levelChanges.Inc()
	case domain.EffectInstallmentPaid:
		m.paidCents.Add(float64(effect.Amount))
	}
	return nil
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)

		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
