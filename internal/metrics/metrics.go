package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var StageRecords = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "herbtrace_stage_records_total",
	Help: "Number of stage records persisted, by stage",
}, []string{"stage"})

var StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "herbtrace_stage_failures_total",
	Help: "Number of rejected or failed stage submissions, by stage and error kind",
}, []string{"stage", "kind"})

var TraceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "herbtrace_trace_duration_seconds",
	Help:    "Duration of chain assembly, by traversal variant",
	Buckets: prometheus.DefBuckets,
}, []string{"variant"})
