package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todos"

type Prom struct {
	reg *prometheus.Registry

	Subscribers    prometheus.Gauge
	Published      prometheus.Counter
	Delivered      prometheus.Counter
	Dropped        prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDurationMs *prometheus.HistogramVec
}

func NewProm() *Prom {
	reg := prometheus.NewRegistry()
	p := &Prom{
		reg: reg,
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "eventbus", Name: "subscribers",
			Help: "Number of attached notification subscribers",
		}),
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "eventbus", Name: "published_total",
			Help: "Total notification events published",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "eventbus", Name: "delivered_total",
			Help: "Total notification events handed to a subscriber",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "eventbus", Name: "dropped_total",
			Help: "Total notification events missed by a subscriber that was not keeping up",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		p.Subscribers, p.Published, p.Delivered, p.Dropped,
		p.HTTPRequests, p.HTTPDurationMs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prom) Handler() http.Handler { return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{}) }

func (p *Prom) Registry() *prometheus.Registry { return p.reg }

// eventbus.Metrics

func (p *Prom) SetSubscribers(n int) { p.Subscribers.Set(float64(n)) }
func (p *Prom) IncPublished()        { p.Published.Inc() }
func (p *Prom) IncDelivered()        { p.Delivered.Inc() }
func (p *Prom) IncDropped()          { p.Dropped.Inc() }

// Middleware records request counts and latency per matched route. Streaming
// routes are recorded when the stream ends.
func (p *Prom) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			p.HTTPDurationMs.WithLabelValues(c.Request.Method, route).Observe(seconds * 1000)
		}))

		c.Next()

		timer.ObserveDuration()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
