package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"honeyeat/internal/database"
)

// Outcomes recorded with each execution.
const (
	OutcomeOK           = "ok"
	OutcomeNoCandidates = "no_candidates"
	OutcomeError        = "error"
)

// ExecutionMetric records metadata for a single engine execution.
type ExecutionMetric struct {
	Operation  string
	Mode       string
	UserID     string
	Candidates int
	Outcome    string
	Latency    time.Duration
	Timestamp  time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database and feeds the Prometheus collectors.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	observe(m)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO execution_metrics (operation, mode, user_id, candidates, outcome, latency_us, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Operation, m.Mode, m.UserID, m.Candidates, m.Outcome, m.Latency.Microseconds(),
		ts.UTC().Format(database.TimestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution metric: %w", err)
	}
	return nil
}

// DailyUsage represents execution totals for a single day.
type DailyUsage struct {
	Date           string
	TotalExecution int
	NoCandidates   int
	Errors         int
	AvgLatency     time.Duration
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(database.TimestampLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS day,
		        COUNT(*),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        AVG(latency_us)
		 FROM execution_metrics WHERE timestamp >= ?
		 GROUP BY day ORDER BY day DESC`,
		OutcomeNoCandidates, OutcomeError, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u   DailyUsage
			avg sql.NullFloat64
		)
		if err := rows.Scan(&u.Date, &u.TotalExecution, &u.NoCandidates, &u.Errors, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.AvgLatency = time.Duration(avg.Float64) * time.Microsecond
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(database.TimestampLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	return res.RowsAffected()
}
