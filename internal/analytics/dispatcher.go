package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/internal/observability/metrics"
	"github.com/geovantage/lead-intake/pkg/logging"
)

const trackTimeout = 5 * time.Second

// Dispatcher queues events and tracks them on a background worker so Report
// never blocks or fails the caller. A full queue drops the event.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	logger  *logging.Logger
	metrics *metrics.LeadMetrics

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sink Sink, size int, logger *logging.Logger, m *metrics.LeadMetrics) *Dispatcher {
	if sink == nil {
		panic("analytics: sink required")
	}
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, size),
		logger:  logger,
		metrics: m,
	}
}

// Report implements leads.AnalyticsSink.
func (d *Dispatcher) Report(_ context.Context, lead *leads.Lead) {
	d.Enqueue(EventFromLead(lead))
}

// Enqueue hands an event to the worker, dropping it when the queue is full or closed.
func (d *Dispatcher) Enqueue(evt Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(evt, "closed")
		return false
	}
	select {
	case d.queue <- evt:
		return true
	default:
		d.drop(evt, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(evt Event, reason string) {
	d.metrics.ObserveAnalyticsDropped()
	d.logger.Warn("analytics event dropped", "reason", reason, "submission_id", evt.SubmissionID)
}

// Run tracks queued events until Close drains the queue or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-d.queue:
			if !ok {
				return
			}
			d.track(ctx, evt)
		}
	}
}

func (d *Dispatcher) track(ctx context.Context, evt Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), trackTimeout)
	defer cancel()
	if err := d.sink.Track(ctx, evt); err != nil {
		d.logger.Error("analytics track failed", "error", err, "submission_id", evt.SubmissionID)
	}
}

// Close stops accepting events; Run returns once the backlog is tracked.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

var _ leads.AnalyticsSink = (*Dispatcher)(nil)
