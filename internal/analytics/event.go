// Package analytics reports accepted leads to telemetry backends without
// holding up the submission that produced them.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/internal/observability/metrics"
	"github.com/geovantage/lead-intake/pkg/logging"
)

// Event is the non-PII record of one accepted lead.
type Event struct {
	SubmissionID   string    `json:"submission_id"`
	Category       string    `json:"category"`
	ClearanceLevel string    `json:"clearance_level,omitempty"`
	Timeline       string    `json:"timeline,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EventFromLead keeps only the qualification fields of a lead.
func EventFromLead(lead *leads.Lead) Event {
	occurred := lead.SubmittedAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return Event{
		SubmissionID:   lead.ID,
		Category:       lead.Category(),
		ClearanceLevel: string(lead.ClearanceLevel),
		Timeline:       string(lead.Timeline),
		OccurredAt:     occurred,
	}
}

// Sink records events somewhere.
type Sink interface {
	Track(ctx context.Context, evt Event) error
}

// Fanout tracks the event on every sink and joins the failures.
type Fanout []Sink

func (f Fanout) Track(ctx context.Context, evt Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Track(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to the structured log.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Track(_ context.Context, evt Event) error {
	s.logger.Info("analytics event",
		"submission_id", evt.SubmissionID,
		"category", evt.Category,
		"clearance_level", evt.ClearanceLevel,
		"timeline", evt.Timeline,
	)
	return nil
}

// MetricsSink counts events in Prometheus.
type MetricsSink struct {
	metrics *metrics.LeadMetrics
}

func NewMetricsSink(m *metrics.LeadMetrics) *MetricsSink {
	return &MetricsSink{metrics: m}
}

func (s *MetricsSink) Track(_ context.Context, evt Event) error {
	s.metrics.ObserveAnalyticsEvent(evt.Category, evt.ClearanceLevel)
	return nil
}

var (
	_ Sink = Fanout(nil)
	_ Sink = (*LogSink)(nil)
	_ Sink = (*MetricsSink)(nil)
)
