package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/geovantage/lead-intake/pkg/logging"
)

// CategoryCount is one row of the admin summary.
type CategoryCount struct {
	Category       string `json:"category"`
	ClearanceLevel string `json:"clearance_level"`
	Count          int64  `json:"count"`
}

// StatsReader summarizes lead_events for the admin API.
type StatsReader struct {
	db *sql.DB
}

func NewStatsReader(db *sql.DB) *StatsReader {
	if db == nil {
		panic("analytics: sql db required")
	}
	return &StatsReader{db: db}
}

// Summary counts events per category and clearance level. An empty category
// filter means every category; a zero since means all time.
func (r *StatsReader) Summary(ctx context.Context, categories []string, since time.Time) ([]CategoryCount, error) {
	query := `
		SELECT category, COALESCE(clearance_level, 'unspecified'), COUNT(*)
		FROM lead_events
		WHERE (cardinality($1::text[]) = 0 OR category = ANY($1::text[]))
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		GROUP BY 1, 2
		ORDER BY 1, 2
	`
	if categories == nil {
		categories = []string{}
	}
	rows, err := r.db.QueryContext(ctx, query, pq.Array(categories), sql.NullTime{Time: since, Valid: !since.IsZero()})
	if err != nil {
		return nil, fmt.Errorf("analytics: query summary: %w", err)
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.ClearanceLevel, &c.Count); err != nil {
			return nil, fmt.Errorf("analytics: scan summary: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: iterate summary: %w", err)
	}
	return out, nil
}

// StatsResponse is the body of GET /admin/leads/stats.
type StatsResponse struct {
	Since  string          `json:"since"`
	Total  int64           `json:"total"`
	Counts []CategoryCount `json:"counts"`
}

// StatsHandler serves the admin lead summary.
type StatsHandler struct {
	reader *StatsReader
	logger *logging.Logger
}

func NewStatsHandler(reader *StatsReader, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{reader: reader, logger: logger}
}

// GetStats handles GET /admin/leads/stats?category=a,b&since=RFC3339.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var categories []string
	for _, c := range strings.Split(r.URL.Query().Get("category"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
			return
		}
		since = parsed.UTC()
	}

	counts, err := h.reader.Summary(r.Context(), categories, since)
	if err != nil {
		h.logger.Error("failed to load lead stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	resp := StatsResponse{Since: "all-time", Counts: counts}
	if !since.IsZero() {
		resp.Since = since.Format(time.RFC3339)
	}
	for _, c := range counts {
		resp.Total += c.Count
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
