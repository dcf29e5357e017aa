package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geovantage/lead-intake/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, s.err
}

func (s failingStore) Set(context.Context, string, time.Time) error { return s.err }

func newTestGuard(store Store, clock Clock) *Guard {
	return NewGuard(store, time.Minute, WithClock(clock), WithLogger(logging.Discard()))
}

func TestGuard_AllowsFirstSubmission(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g := newTestGuard(NewMemoryStore(), clock)

	assert.True(t, g.CheckRateLimit(context.Background(), "203.0.113.7"))
	assert.Zero(t, g.RetryAfter(context.Background(), "203.0.113.7"))
}

func TestGuard_BlocksInsideWindow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g := newTestGuard(NewMemoryStore(), clock)

	require.NoError(t, g.RecordSubmissionTime(ctx, "client"))
	clock.Advance(20 * time.Second)

	assert.False(t, g.CheckRateLimit(ctx, "client"))
	assert.Equal(t, 40*time.Second, g.RetryAfter(ctx, "client"))
	assert.True(t, g.CheckRateLimit(ctx, "other-client"), "cooldown is per client")
}

func TestGuard_AllowsAfterWindow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g := newTestGuard(NewMemoryStore(), clock)

	require.NoError(t, g.RecordSubmissionTime(ctx, "client"))
	clock.Advance(time.Minute)

	assert.True(t, g.CheckRateLimit(ctx, "client"))
}

func TestGuard_FailsOpenOnStoreError(t *testing.T) {
	g := newTestGuard(failingStore{err: errors.New("connection refused")}, SystemClock)
	assert.True(t, g.CheckRateLimit(context.Background(), "client"))
}

func TestGuard_RecordPropagatesStoreError(t *testing.T) {
	g := newTestGuard(failingStore{err: errors.New("read only")}, SystemClock)
	assert.Error(t, g.RecordSubmissionTime(context.Background(), "client"))
}

func TestGuard_IgnoresFutureTimestamp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, Key("client"), now.Add(time.Hour)))

	g := newTestGuard(store, &fakeClock{now: now})
	assert.True(t, g.CheckRateLimit(ctx, "client"))
}

func TestNewGuard_DefaultInterval(t *testing.T) {
	g := NewGuard(NewMemoryStore(), 0)
	assert.Equal(t, DefaultInterval, g.Interval())
}

func TestKey(t *testing.T) {
	assert.Equal(t, KeyPrefix, Key(""))
	assert.Equal(t, KeyPrefix+":198.51.100.4", Key("198.51.100.4"))
}
