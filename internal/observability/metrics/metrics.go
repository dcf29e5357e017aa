package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes used as the "outcome" label.
const (
	OutcomeAccepted       = "accepted"
	OutcomeInvalid        = "invalid"
	OutcomeRateLimited    = "rate_limited"
	OutcomeInFlight       = "in_flight"
	OutcomeTransportError = "transport_error"
	OutcomeDiscarded      = "discarded"
)

// LeadMetrics exposes counters/histograms for the lead intake flow.
type LeadMetrics struct {
	submissionsTotal  *prometheus.CounterVec
	deliveryLatency   *prometheus.HistogramVec
	analyticsDropped  prometheus.Counter
	analyticsReported *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_intake",
			Subsystem: "submissions",
			Name:      "total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		deliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lead_intake",
			Subsystem: "delivery",
			Name:      "latency_seconds",
			Help:      "Latency of forwarding a lead to the remote endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		analyticsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lead_intake",
			Subsystem: "analytics",
			Name:      "dropped_total",
			Help:      "Analytics events dropped because the queue was full or closed",
		}),
		analyticsReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_intake",
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Analytics events by category and clearance level",
		}, []string{"category", "clearance_level"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.deliveryLatency, m.analyticsDropped, m.analyticsReported)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveDelivery(seconds float64, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.deliveryLatency.WithLabelValues(status).Observe(seconds)
}

func (m *LeadMetrics) ObserveAnalyticsDropped() {
	if m == nil {
		return
	}
	m.analyticsDropped.Inc()
}

func (m *LeadMetrics) ObserveAnalyticsEvent(category, clearance string) {
	if m == nil {
		return
	}
	if clearance == "" {
		clearance = "unspecified"
	}
	m.analyticsReported.WithLabelValues(category, clearance).Inc()
}
