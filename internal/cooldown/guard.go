// Package cooldown enforces a minimum interval between lead submissions from
// the same client, backed by a pluggable last-submission timestamp store.
package cooldown

import (
	"context"
	"time"

	"github.com/geovantage/lead-intake/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// KeyPrefix namespaces every persisted timestamp.
const KeyPrefix = "lead_intake:last_submission"

// DefaultInterval is the cooldown used when none is configured.
const DefaultInterval = time.Minute

// Store persists the last successful submission time per key.
type Store interface {
	Get(ctx context.Context, key string) (time.Time, bool, error)
	Set(ctx context.Context, key string, at time.Time) error
}

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Key returns the store key for a client. An empty client maps to the bare prefix,
// which is what a single browser form uses.
func Key(client string) string {
	if client == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + client
}

// Guard answers whether a client is still cooling down.
type Guard struct {
	store    Store
	clock    Clock
	interval time.Duration
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Option customizes a Guard.
type Option func(*Guard)

func WithClock(c Clock) Option {
	return func(g *Guard) {
		if c != nil {
			g.clock = c
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard builds a guard; non-positive intervals fall back to DefaultInterval.
func NewGuard(store Store, interval time.Duration, opts ...Option) *Guard {
	if store == nil {
		panic("cooldown: store required")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	g := &Guard{
		store:    store,
		clock:    SystemClock,
		interval: interval,
		logger:   logging.Default(),
		tracer:   otel.Tracer("leadintake.internal.cooldown"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Interval returns the configured cooldown.
func (g *Guard) Interval() time.Duration { return g.interval }

// CheckRateLimit returns false while the client's last submission is younger
// than the interval. Missing timestamps and store failures allow the attempt.
func (g *Guard) CheckRateLimit(ctx context.Context, client string) bool {
	return g.RetryAfter(ctx, client) == 0
}

// RetryAfter returns how much of the cooldown remains, or zero when allowed.
func (g *Guard) RetryAfter(ctx context.Context, client string) time.Duration {
	ctx, span := g.tracer.Start(ctx, "cooldown.check")
	defer span.End()

	key := Key(client)
	last, ok, err := g.store.Get(ctx, key)
	if err != nil {
		span.RecordError(err)
		g.logger.Error("cooldown lookup failed, allowing submission", "error", err, "key", key)
		return 0
	}
	if !ok {
		return 0
	}

	now := g.clock.Now()
	elapsed := now.Sub(last)
	if elapsed < 0 {
		// A timestamp from the future is corrupt; ignore it.
		g.logger.Warn("ignoring future cooldown timestamp", "key", key, "stored", last)
		return 0
	}
	if elapsed >= g.interval {
		return 0
	}
	remaining := g.interval - elapsed
	span.SetAttributes(attribute.Bool("cooldown.blocked", true))
	return remaining
}

// RecordSubmissionTime stamps the client with the current time.
func (g *Guard) RecordSubmissionTime(ctx context.Context, client string) error {
	ctx, span := g.tracer.Start(ctx, "cooldown.record")
	defer span.End()

	if err := g.store.Set(ctx, Key(client), g.clock.Now()); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
