package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type Prometheus struct {
	registry      *prom.Registry
	searchTotal   *prom.CounterVec
	searchSeconds *prom.HistogramVec
	requestTotal  *prom.CounterVec
}

// NewPrometheus registers the search collectors plus the Go and process
// collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prom.NewRegistry(),
		searchTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "finder_searches_total",
			Help: "Total number of searches by strategy",
		}, []string{"strategy", "success"}),
		searchSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "finder_search_seconds",
			Help:    "Search duration in seconds, count and page fetch included",
			Buckets: prom.DefBuckets,
		}, []string{"strategy", "success"}),
		requestTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "finder_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
	}
	p.registry.MustRegister(
		p.searchTotal,
		p.searchSeconds,
		p.requestTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) IncSearchTotal(strategy string, success bool) {
	p.searchTotal.WithLabelValues(strategy, strconv.FormatBool(success)).Inc()
}

func (p *Prometheus) ObserveSearchSeconds(strategy string, success bool, seconds float64) {
	p.searchSeconds.WithLabelValues(strategy, strconv.FormatBool(success)).Observe(seconds)
}

func (p *Prometheus) IncRequestTotal(route string, status int) {
	p.requestTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
