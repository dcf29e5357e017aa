package leads

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geovantage/lead-intake/pkg/logging"
)

type stubTransport struct {
	mu    sync.Mutex
	err   error
	calls []*Lead
	block chan struct{}
}

func (s *stubTransport) Forward(_ context.Context, lead *Lead) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, lead)
	return s.err
}

func (s *stubTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// stubLimiter keeps one timestamp per key against a settable clock.
type stubLimiter struct {
	mu        sync.Mutex
	now       time.Time
	interval  time.Duration
	last      map[string]time.Time
	recordErr error
}

func newStubLimiter(now time.Time) *stubLimiter {
	return &stubLimiter{now: now, interval: time.Minute, last: make(map[string]time.Time)}
}

func (l *stubLimiter) CheckRateLimit(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.last[key]
	return !ok || l.now.Sub(last) >= l.interval
}

func (l *stubLimiter) RetryAfter(_ context.Context, key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.last[key]
	if !ok {
		return 0
	}
	if wait := l.interval - l.now.Sub(last); wait > 0 {
		return wait
	}
	return 0
}

func (l *stubLimiter) RecordSubmissionTime(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recordErr != nil {
		return l.recordErr
	}
	l.last[key] = l.now
	return nil
}

func (l *stubLimiter) Last(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.last[key]
	return t, ok
}

func (l *stubLimiter) Advance(d time.Duration) {
	l.mu.Lock()
	l.now = l.now.Add(d)
	l.mu.Unlock()
}

type recordingAnalytics struct {
	mu    sync.Mutex
	leads []*Lead
}

func (r *recordingAnalytics) Report(_ context.Context, lead *Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, lead)
}

func (r *recordingAnalytics) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.leads)
}

var (
	testNow         = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	errEndpointDown = errors.New("endpoint unavailable")
)

// exampleValues is the reference submission from the marketing site.
func exampleValues() FormValues {
	return FormValues{
		FirstName:    "A",
		LastName:     "Smith",
		Email:        "a@b.com",
		Phone:        "5551234567",
		Organization: "Acme",
		Title:        "Eng",
		Message:      "Need a demo of the platform for our team",
		Consent:      true,
	}
}

type fixture struct {
	svc       *Service
	transport *stubTransport
	limiter   *stubLimiter
	analytics *recordingAnalytics
}

func newFixture() *fixture {
	f := &fixture{
		transport: &stubTransport{},
		limiter:   newStubLimiter(testNow),
		analytics: &recordingAnalytics{},
	}
	f.svc = NewService(f.transport, f.limiter, logging.Discard(),
		WithAnalytics(f.analytics),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "sub-1" }),
	)
	return f
}
