package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AgencyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_requests_total",
			Help: "Agency API calls by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	AgencyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agency_request_duration_seconds",
			Help:    "Agency API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	AssistantCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_calls_total",
			Help: "Generative assistant calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	DispatcherFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatcher_fallbacks_total",
			Help: "Searches answered by the assistant because no agency matched",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
