// Package metrics defines the custom Prometheus metrics for the permit portal.
// It is the single source of truth for metric names, labels, and help strings.
//
// HTTP request metrics come from echoprometheus; the Recorder here counts
// domain events reported by the services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

const namespace = "permit_portal"

// Recorder implements service.Observer.
type Recorder struct {
	// ApplicationsCreatedTotal counts new applications.
	// Label:
	//   - status: DRAFT, or SUBMITTED when created with submit=true
	ApplicationsCreatedTotal *prometheus.CounterVec

	// StatusTransitionsTotal counts persisted status changes.
	// Labels:
	//   - from, to: application statuses
	StatusTransitionsTotal *prometheus.CounterVec

	// DocumentsStoredTotal counts stored files.
	// Label:
	//   - scope: "library" or "attachment"
	DocumentsStoredTotal *prometheus.CounterVec

	// DocumentBytesTotal sums the size of stored files.
	DocumentBytesTotal prometheus.Counter

	// LoginAttemptsTotal counts login attempts.
	// Label:
	//   - result: "success" or "failure"
	LoginAttemptsTotal *prometheus.CounterVec
}

// NewRecorder registers the domain metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ApplicationsCreatedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "applications_created_total",
				Help:      "Total number of permit applications created, by initial status.",
			},
			[]string{"status"},
		),
		StatusTransitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "application_status_transitions_total",
				Help:      "Total number of application status changes.",
			},
			[]string{"from", "to"},
		),
		DocumentsStoredTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_stored_total",
				Help:      "Total number of documents stored, by scope (library/attachment).",
			},
			[]string{"scope"},
		),
		DocumentBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_bytes_total",
			Help:      "Total size in bytes of stored documents.",
		}),
		LoginAttemptsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) ApplicationCreated(app *domain.Application) {
	r.ApplicationsCreatedTotal.WithLabelValues(string(app.Status)).Inc()
}

func (r *Recorder) StatusChanged(app *domain.Application, from domain.ApplicationStatus) {
	r.StatusTransitionsTotal.WithLabelValues(string(from), string(app.Status)).Inc()
}

func (r *Recorder) DocumentStored(doc *domain.Document) {
	scope := "attachment"
	if doc.IsPublic() {
		scope = "library"
	}
	r.DocumentsStoredTotal.WithLabelValues(scope).Inc()
	r.DocumentBytesTotal.Add(float64(doc.Size))
}

func (r *Recorder) LoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	r.LoginAttemptsTotal.WithLabelValues(result).Inc()
}
