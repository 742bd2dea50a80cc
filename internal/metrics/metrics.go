package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()
	once     sync.Once

	filesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfslicer",
			Name:      "files_written_total",
			Help:      "Output PDF files written, by operation",
		},
		[]string{"op"},
	)

	pagesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfslicer",
			Name:      "pages_written_total",
			Help:      "Pages copied into output files, by operation",
		},
		[]string{"op"},
	)

	bytesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfslicer",
			Name:      "bytes_written_total",
			Help:      "Bytes of output PDF written, by operation",
		},
		[]string{"op"},
	)

	opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfslicer",
			Name:      "operation_duration_seconds",
			Help:      "Duration of split/summary operations by operation and result",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "result"},
	)

	jobs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pdfslicer",
			Name:      "jobs",
			Help:      "Service-mode jobs by state",
		},
		[]string{"state"},
	)
)

// Init registers collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		registry.MustRegister(filesWritten, pagesWritten, bytesWritten, opDuration, jobs)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps all metrics to path for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	Init()
	return prometheus.WriteToTextfile(path, registry)
}

func ObserveFile(op string, pages int, bytes int64) {
	filesWritten.WithLabelValues(op).Inc()
	pagesWritten.WithLabelValues(op).Add(float64(pages))
	bytesWritten.WithLabelValues(op).Add(float64(bytes))
}

func ObserveOperation(op string, err error, dur time.Duration) {
	opDuration.WithLabelValues(op, resultLabel(err)).Observe(dur.Seconds())
}

func JobStarted() { jobs.WithLabelValues("running").Inc() }
func JobFinished(err error) {
	jobs.WithLabelValues("running").Dec()
	jobs.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
