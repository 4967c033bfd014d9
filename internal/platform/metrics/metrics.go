package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestDuration    *prometheus.HistogramVec
	FormsCreated       *prometheus.CounterVec
	AuditEntries       prometheus.Counter
	AuditWriteFailures prometheus.Counter
	MailSent           prometheus.Counter
	MailFailures       prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qms_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		FormsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qms_forms_created_total",
			Help: "Quality forms created, by module.",
		}, []string{"module"}),
		AuditEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qms_audit_entries_total",
			Help: "Audit log entries persisted.",
		}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qms_audit_write_failures_total",
			Help: "Audit log writes that failed and were swallowed.",
		}),
		MailSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qms_mail_sent_total",
			Help: "Reminder mails delivered to the SMTP relay.",
		}),
		MailFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qms_mail_failures_total",
			Help: "Reminder mails that failed to send.",
		}),
	}
}
