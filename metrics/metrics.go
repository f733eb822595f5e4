// Package metrics registers shop counters on a prometheus registry and
// exposes them on the catalog API listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shop holds the counters maintained by the payment pipeline, the wizard
// engine, and the expiry sweeper. A nil *Shop is a valid no-op recorder.
type Shop struct {
	registry *prometheus.Registry

	invoicesIssued      prometheus.Counter
	paymentsCaptured    prometheus.Counter
	paymentsDuplicate   prometheus.Counter
	precheckoutRejected *prometheus.CounterVec
	wizardCommits       *prometheus.CounterVec
	reservationsExpired prometheus.Counter
}

// NewShop builds and registers the shop metrics.
func NewShop() *Shop {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Shop{
		registry: reg,
		invoicesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_invoices_issued_total",
			Help: "Invoices presented to buyers.",
		}),
		paymentsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_payments_captured_total",
			Help: "Payment confirmations turned into orders.",
		}),
		paymentsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_payments_duplicate_total",
			Help: "Duplicate payment confirmations swallowed as no-ops.",
		}),
		precheckoutRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_precheckout_rejected_total",
			Help: "Pre-checkout queries answered negatively.",
		}, []string{"reason"}),
		wizardCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_wizard_commits_total",
			Help: "Completed admin wizard runs.",
		}, []string{"wizard"}),
		reservationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_reservations_expired_total",
			Help: "Pending orders dropped by the expiry sweep.",
		}),
	}
	reg.MustRegister(
		m.invoicesIssued,
		m.paymentsCaptured,
		m.paymentsDuplicate,
		m.precheckoutRejected,
		m.wizardCommits,
		m.reservationsExpired,
	)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Shop) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncInvoiceIssued counts a presented invoice.
func (m *Shop) IncInvoiceIssued() {
	if m != nil && m.invoicesIssued != nil {
		m.invoicesIssued.Inc()
	}
}

// IncPaymentCaptured counts a captured order.
func (m *Shop) IncPaymentCaptured() {
	if m != nil && m.paymentsCaptured != nil {
		m.paymentsCaptured.Inc()
	}
}

// IncPaymentDuplicate counts a swallowed duplicate confirmation.
func (m *Shop) IncPaymentDuplicate() {
	if m != nil && m.paymentsDuplicate != nil {
		m.paymentsDuplicate.Inc()
	}
}

// IncPrecheckoutRejected counts a rejected pre-checkout query by reason.
func (m *Shop) IncPrecheckoutRejected(reason string) {
	if m != nil && m.precheckoutRejected != nil {
		if reason == "" {
			reason = "unknown"
		}
		m.precheckoutRejected.WithLabelValues(reason).Inc()
	}
}

// IncWizardCommit counts a committed wizard run.
func (m *Shop) IncWizardCommit(wizard string) {
	if m != nil && m.wizardCommits != nil {
		if wizard == "" {
			wizard = "unknown"
		}
		m.wizardCommits.WithLabelValues(wizard).Inc()
	}
}

// AddReservationsExpired counts reservations dropped by a sweep.
func (m *Shop) AddReservationsExpired(n int64) {
	if m != nil && m.reservationsExpired != nil && n > 0 {
		m.reservationsExpired.Add(float64(n))
	}
}
