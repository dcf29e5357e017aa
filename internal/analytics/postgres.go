package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink appends events to the lead_events table.
type PostgresSink struct {
	pool execer
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	if pool == nil {
		panic("analytics: pgx pool required")
	}
	return &PostgresSink{pool: pool}
}

func newPostgresSinkWithExec(exec execer) *PostgresSink {
	if exec == nil {
		panic("analytics: exec required")
	}
	return &PostgresSink{pool: exec}
}

func (s *PostgresSink) Track(ctx context.Context, evt Event) error {
	query := `
		INSERT INTO lead_events (submission_id, category, clearance_level, timeline, occurred_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		ON CONFLICT (submission_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, evt.SubmissionID, evt.Category, evt.ClearanceLevel, evt.Timeline, evt.OccurredAt); err != nil {
		return fmt.Errorf("analytics: insert event: %w", err)
	}
	return nil
}

var _ Sink = (*PostgresSink)(nil)
