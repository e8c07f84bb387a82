package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	generationDuration prom.Histogram
	pageResults        *prom.CounterVec
	overloadsSplit     prom.Counter
	parseFailures      *prom.CounterVec
	objectCount        *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generationDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "apigen",
			Name:      "generation_duration_seconds",
			Help:      "Total duration of a generation run",
			Buckets:   prom.DefBuckets,
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "apigen",
			Name:      "page_results_total",
			Help:      "Generated page counts by outcome",
		}, []string{"result"}),
		overloadsSplit: prom.NewCounter(prom.CounterOpts{
			Namespace: "apigen",
			Name:      "overloads_split_total",
			Help:      "Number of overloads split out of multi-overload docstrings",
		}),
		parseFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "apigen",
			Name:      "docstring_parse_failures_total",
			Help:      "Docstring parse failures by module",
		}, []string{"module"}),
		objectCount: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "apigen",
			Name:      "inventory_objects",
			Help:      "Number of documented objects per module",
		}, []string{"module"}),
	}
	reg.MustRegister(pr.generationDuration, pr.pageResults, pr.overloadsSplit, pr.parseFailures, pr.objectCount)
	return pr
}

func (p *PrometheusRecorder) ObserveGenerationDuration(d time.Duration) {
	if p == nil || p.generationDuration == nil {
		return
	}
	p.generationDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncOverloadsSplit(n int) {
	if p == nil || p.overloadsSplit == nil {
		return
	}
	p.overloadsSplit.Add(float64(n))
}

func (p *PrometheusRecorder) IncParseFailure(module string) {
	if p == nil || p.parseFailures == nil {
		return
	}
	p.parseFailures.WithLabelValues(module).Inc()
}

func (p *PrometheusRecorder) SetObjectCount(module string, n int) {
	if p == nil || p.objectCount == nil {
		return
	}
	p.objectCount.WithLabelValues(module).Set(float64(n))
}

// HTTPHandler returns an http.Handler serving Prometheus metrics for the
// provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
