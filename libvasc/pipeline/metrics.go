package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Input results counted by govasc_inputs_total.
const (
	ResultOK            = "ok"
	ResultSkipped       = "skipped"
	ResultFailed        = "failed"
	ResultUnknownFormat = "unknown_format"
)

type metrics struct {
	inputs       *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
	meshFaces    prometheus.Histogram
	artifacts    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "govasc_inputs_total",
			Help: "Inputs processed, by result",
		}, []string{"result"}),

		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "govasc_stage_duration_seconds",
			Help:    "Pipeline stage duration",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60},
		}, []string{"stage"}),

		meshFaces: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "govasc_mesh_faces",
			Help:    "Triangle count per reconstructed morphology",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}),

		artifacts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "govasc_artifacts_total",
			Help: "Files committed to output directories",
		}),
	}
	reg.MustRegister(m.inputs, m.stageSeconds, m.meshFaces, m.artifacts)
	return m
}
