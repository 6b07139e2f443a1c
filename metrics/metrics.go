// Package metrics exports Prometheus metrics for Conecta gateway calls.
//
// A Collector is fed from the client's after-call hook:
//
//	collector, _ := metrics.NewCollector(prometheus.DefaultRegisterer)
//	client, _ := http.NewClient(commerceID, http.WithOnAfterCall(collector.Observe))
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	conecta "github.com/Freidergandica/conecta-go"
)

const namespace = "conecta"

// Collector records one observation per gateway call.
type Collector struct {
	Calls     *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewCollector creates the call metrics and registers them with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "calls_total",
		Help:      "Total number of gateway calls by endpoint, outcome and status.",
	}, []string{"endpoint", "outcome", "kind", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "call_duration_ms",
		Help:      "Gateway call latency in milliseconds.",
		Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"endpoint"})

	if reg != nil {
		for _, c := range []prometheus.Collector{calls, latency} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return &Collector{Calls: calls, LatencyMS: latency}, nil
}

// Observe records event. Its signature matches the client's OnAfterCallFunc.
func (c *Collector) Observe(_ context.Context, event conecta.CallEvent) {
	kind := ""
	if gwErr, ok := conecta.AsGatewayError(event.Error); ok {
		kind = string(gwErr.Kind)
	}
	status := "none"
	if event.StatusCode != 0 {
		status = strconv.Itoa(event.StatusCode)
	}

	c.Calls.WithLabelValues(string(event.Endpoint), string(event.Type), kind, status).Inc()
	c.LatencyMS.WithLabelValues(string(event.Endpoint)).Observe(float64(event.Duration.Microseconds()) / 1000)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
