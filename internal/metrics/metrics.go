// Package metrics exposes Prometheus instrumentation for the serving loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edgeflow/edgeinfer/internal/model"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgeinfer_requests_total",
		Help: "Requests recognized on the link, by command",
	}, []string{"command"})

	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "edgeinfer_inference_duration_seconds",
		Help:    "Duration of one LSTM forward pass",
		Buckets: prometheus.DefBuckets,
	})

	SizeRejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edgeinfer_size_rejects_total",
		Help: "INFR requests rejected because the count disagreed with T*F",
	})

	RequestTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgeinfer_request_timeouts_total",
		Help: "Requests abandoned because a read phase timed out",
	}, []string{"phase"})

	ModelDimensions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "edgeinfer_model_dimension",
		Help: "Dimensions of the loaded model",
	}, []string{"dim"})
)

func RecordRequest(command string) {
	RequestsTotal.WithLabelValues(command).Inc()
}

func RecordInference(d time.Duration) {
	InferenceDuration.Observe(d.Seconds())
}

func RecordSizeReject() {
	SizeRejects.Inc()
}

func RecordTimeout(phase string) {
	RequestTimeouts.WithLabelValues(phase).Inc()
}

// SetModelDimensions publishes the loaded header once at startup.
func SetModelDimensions(hdr model.Header) {
	ModelDimensions.WithLabelValues("T").Set(float64(hdr.T))
	ModelDimensions.WithLabelValues("F").Set(float64(hdr.F))
	ModelDimensions.WithLabelValues("H").Set(float64(hdr.H))
	ModelDimensions.WithLabelValues("hidden").Set(float64(hdr.Hidden))
}
