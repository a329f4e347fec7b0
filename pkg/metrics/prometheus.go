package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubjectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framereel_subjects_total",
		Help: "Subjects processed, by outcome",
	}, []string{"status"})

	FramesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framereel_frames_written_total",
		Help: "Frames written to videos, by kind (real, hold, blend)",
	}, []string{"kind"})

	FramesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framereel_frames_dropped_total",
		Help: "Frame files skipped because no index could be read from the name",
	})

	PairsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framereel_pairs_skipped_total",
		Help: "Frame pairs skipped or written without blending, by reason",
	}, []string{"reason"})

	AssemblyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framereel_assembly_duration_seconds",
		Help:    "Duration of one subject's video assembly, by stage",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framereel_active_workers",
		Help: "Number of subjects currently being assembled",
	})
)
