package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RetentionRuns        *prometheus.CounterVec
	RetentionRowsRemoved *prometheus.CounterVec
	AuditEntriesWritten  prometheus.Counter
	AuditWriteFailures   prometheus.Counter
	DSRSubmissions       *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on reg. Pass a fresh
// registry in tests to avoid duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RetentionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memberport_retention_runs_total",
			Help: "Total retention engine runs by outcome",
		}, []string{"outcome"}),
		RetentionRowsRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memberport_retention_rows_removed_total",
			Help: "Rows soft-deleted, anonymized or purged per entity",
		}, []string{"entity", "action"}),
		AuditEntriesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "memberport_audit_entries_written_total",
			Help: "Audit entries successfully appended",
		}),
		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "memberport_audit_write_failures_total",
			Help: "Audit entries dropped after a store failure",
		}),
		DSRSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memberport_dsr_submissions_total",
			Help: "Data subject requests submitted by kind",
		}, []string{"kind"}),
	}
}
