package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bezier_frames_processed_total",
		Help: "Total number of frames run through the pipeline, by status",
	}, []string{"status"})

	FrameDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bezier_frame_duration_seconds",
		Help:    "Duration of a single frame, by stage",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"stage"})

	ExpressionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bezier_expressions_total",
		Help: "Total number of curve expressions produced",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bezier_active_workers",
		Help: "Number of batch workers currently processing a frame",
	})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bezier_uploads_total",
		Help: "Total number of frame uploads, by status",
	}, []string{"status"})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bezier_ws_clients",
		Help: "Number of connected calculator websockets",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
