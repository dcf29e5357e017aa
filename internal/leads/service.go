package leads

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geovantage/lead-intake/internal/observability/metrics"
	"github.com/geovantage/lead-intake/pkg/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("leadintake.internal.leads")

// Transport delivers a validated lead to the remote endpoint.
type Transport interface {
	Forward(ctx context.Context, lead *Lead) error
}

// RateLimiter enforces the minimum interval between submissions from one client.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, clientKey string) bool
	RetryAfter(ctx context.Context, clientKey string) time.Duration
	RecordSubmissionTime(ctx context.Context, clientKey string) error
}

// AnalyticsSink receives a fire-and-forget report for each accepted lead.
// Implementations must not block.
type AnalyticsSink interface {
	Report(ctx context.Context, lead *Lead)
}

// Result describes an accepted submission.
type Result struct {
	ID string
	// Discarded is set when the honeypot tripped; nothing was forwarded.
	Discarded bool
}

// Service gates lead delivery behind validation, the cooldown, and the in-flight check.
type Service struct {
	transport Transport
	limiter   RateLimiter
	analytics AnalyticsSink
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithAnalytics attaches the analytics collaborator.
func WithAnalytics(sink AnalyticsSink) ServiceOption {
	return func(s *Service) { s.analytics = sink }
}

// WithMetrics attaches Prometheus observers.
func WithMetrics(m *metrics.LeadMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock used for SubmittedAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides submission id generation.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the submission guard.
func NewService(transport Transport, limiter RateLimiter, logger *logging.Logger, opts ...ServiceOption) *Service {
	if transport == nil {
		panic("leads: transport required")
	}
	if limiter == nil {
		panic("leads: rate limiter required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		transport: transport,
		limiter:   limiter,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		inFlight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare runs the local checks: honeypot, validation, then the cooldown.
// Nothing here touches the network.
func (s *Service) Prepare(ctx context.Context, clientKey string, values FormValues) (*Lead, error) {
	if IsBot(values) {
		s.logger.Warn("honeypot tripped, discarding submission", "client_key", clientKey)
		s.metrics.ObserveSubmission(metrics.OutcomeDiscarded)
		return nil, ErrHoneypot
	}

	lead, err := Validate(values)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			s.logger.Info("lead failed validation", "client_key", clientKey, "fields", verrs.Fields())
		}
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, err
	}

	if err := s.checkCooldown(ctx, clientKey); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *Service) checkCooldown(ctx context.Context, clientKey string) error {
	if s.limiter.CheckRateLimit(ctx, clientKey) {
		return nil
	}
	retry := s.limiter.RetryAfter(ctx, clientKey)
	s.logger.Info("lead blocked by cooldown", "client_key", clientKey, "retry_after", retry.String())
	s.metrics.ObserveSubmission(metrics.OutcomeRateLimited)
	return &RateLimitError{RetryAfter: retry}
}

// Submit forwards a validated lead once. The cooldown is checked again while the
// key is held. On success the timestamp is recorded and analytics are reported;
// on failure nothing is recorded.
func (s *Service) Submit(ctx context.Context, clientKey string, lead *Lead) error {
	if lead == nil {
		return errors.New("leads: lead required")
	}
	if !s.acquire(clientKey) {
		s.metrics.ObserveSubmission(metrics.OutcomeInFlight)
		return ErrSubmissionInProgress
	}
	defer s.release(clientKey)

	// A submission for this key may have finished since Prepare ran.
	if err := s.checkCooldown(ctx, clientKey); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "leads.submit", trace.WithAttributes(
		attribute.String("lead.category", lead.Category()),
	))
	defer span.End()

	if lead.ID == "" {
		lead.ID = s.newID()
	}
	if lead.SubmittedAt.IsZero() {
		lead.SubmittedAt = s.now()
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID))

	start := time.Now()
	err := s.transport.Forward(ctx, lead)
	s.metrics.ObserveDelivery(time.Since(start).Seconds(), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		s.logger.Error("lead delivery failed", "error", err, "submission_id", lead.ID, "client_key", clientKey)
		s.metrics.ObserveSubmission(metrics.OutcomeTransportError)
		return &TransportError{Err: err}
	}

	if err := s.limiter.RecordSubmissionTime(ctx, clientKey); err != nil {
		s.logger.Warn("failed to record submission time", "error", err, "client_key", clientKey)
	}
	if s.analytics != nil {
		s.analytics.Report(ctx, lead)
	}
	s.metrics.ObserveSubmission(metrics.OutcomeAccepted)
	s.logger.Info("lead accepted",
		"submission_id", lead.ID,
		"category", lead.Category(),
		"clearance_level", string(lead.ClearanceLevel),
	)
	return nil
}

// Process runs the full guard for one form post.
func (s *Service) Process(ctx context.Context, clientKey string, values FormValues) (*Result, error) {
	lead, err := s.Prepare(ctx, clientKey, values)
	if errors.Is(err, ErrHoneypot) {
		return &Result{Discarded: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.Submit(ctx, clientKey, lead); err != nil {
		return nil, err
	}
	return &Result{ID: lead.ID}, nil
}

func (s *Service) acquire(clientKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[clientKey]; busy {
		return false
	}
	s.inFlight[clientKey] = struct{}{}
	return true
}

func (s *Service) release(clientKey string) {
	s.mu.Lock()
	delete(s.inFlight, clientKey)
	s.mu.Unlock()
}
