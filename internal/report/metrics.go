package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storewatch",
		Name:      "report_jobs_submitted_total",
		Help:      "Report jobs accepted by Submit.",
	})
	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storewatch",
		Name:      "report_jobs_finished_total",
		Help:      "Report jobs that reached a terminal state.",
	}, []string{"state"})
	runSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storewatch",
		Name:      "report_run_seconds",
		Help:      "Wall time of one report run, snapshot read through artifact write.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
