package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"page_structure/domain/interfaces"
)

const namespace = "page_structure"

// Recorder holds the extraction and scrape collectors
type Recorder struct {
	passes        *prometheus.CounterVec
	passLatency   prometheus.Histogram
	passElements  prometheus.Histogram
	scrapes       *prometheus.CounterVec
	scrapeLatency prometheus.Histogram
	screenshots   prometheus.Counter
	retries       prometheus.Counter
	inFlight      prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Total extraction passes by result",
			},
			[]string{"result"},
		),
		passLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "Duration of extraction passes",
				Buckets:   prometheus.DefBuckets,
			},
		),
		passElements: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_elements",
				Help:      "Interactable elements captured per successful pass",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		scrapes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrapes_total",
				Help:      "Total scrapes by result",
			},
			[]string{"result"},
		),
		scrapeLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Duration of complete scrapes including retries",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
			},
		),
		screenshots: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "screenshots_total",
				Help:      "Screenshots taken by successful scrapes",
			},
		),
		retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrape_retries_total",
				Help:      "Total number of scrape retries",
			},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scrapes_in_flight",
				Help:      "Scrapes currently running or waiting for the browser",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(r.passes, r.passLatency, r.passElements, r.scrapes, r.scrapeLatency, r.screenshots, r.retries, r.inFlight)
	}
	return r
}

func (r *Recorder) ObservePass(result string, elements int, dur time.Duration) {
	r.passes.WithLabelValues(result).Inc()
	r.passLatency.Observe(dur.Seconds())
	if result == "success" {
		r.passElements.Observe(float64(elements))
	}
}

func (r *Recorder) ObserveScrape(result string, screenshots int, dur time.Duration) {
	r.scrapes.WithLabelValues(result).Inc()
	r.scrapeLatency.Observe(dur.Seconds())
	r.screenshots.Add(float64(screenshots))
}

func (r *Recorder) IncRetry()         { r.retries.Inc() }
func (r *Recorder) SetInFlight(n int) { r.inFlight.Set(float64(n)) }

// Handler returns the http.Handler for /metrics
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ interfaces.Metrics = (*Recorder)(nil)
