// Package health keeps the daily water and fruit check-in.
package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"honeyeat/internal/database"
)

// Habits that can be checked off each day.
const (
	HabitWater = "water"
	HabitFruit = "fruit"
)

// Checkin is one user's record for one calendar day.
type Checkin struct {
	UserID string    `json:"user_id"`
	Date   time.Time `json:"date"`
	Water  bool      `json:"water_checked"`
	Fruit  bool      `json:"fruit_checked"`
}

// Done reports whether both habits are checked.
func (c Checkin) Done() bool {
	return c.Water && c.Fruit
}

// Repository stores check-ins.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get returns the check-in for the given day. A day with no record yields an
// empty check-in, not an error.
func (r *Repository) Get(ctx context.Context, userID string, day time.Time) (Checkin, error) {
	c := Checkin{UserID: userID, Date: truncate(day)}
	err := r.db.QueryRowContext(ctx,
		`SELECT water_checked, fruit_checked FROM health_checkin WHERE user_id = ? AND date = ?`,
		userID, day.Format(database.DateLayout),
	).Scan(&c.Water, &c.Fruit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Checkin{}, fmt.Errorf("failed to get check-in for %s: %w", userID, err)
	}
	return c, nil
}

// Save writes the check-in, replacing any record for the same day.
func (r *Repository) Save(ctx context.Context, c Checkin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO health_checkin (date, user_id, water_checked, fruit_checked, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		   water_checked = excluded.water_checked,
		   fruit_checked = excluded.fruit_checked`,
		c.Date.Format(database.DateLayout), c.UserID, c.Water, c.Fruit,
		time.Now().UTC().Format(database.TimestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save check-in for %s: %w", c.UserID, err)
	}
	return nil
}

// Toggle flips one habit for the given day and returns the updated check-in.
func (r *Repository) Toggle(ctx context.Context, userID string, day time.Time, habit string) (Checkin, error) {
	c, err := r.Get(ctx, userID, day)
	if err != nil {
		return Checkin{}, err
	}
	switch habit {
	case HabitWater:
		c.Water = !c.Water
	case HabitFruit:
		c.Fruit = !c.Fruit
	default:
		return Checkin{}, fmt.Errorf("unknown habit %q", habit)
	}
	if err := r.Save(ctx, c); err != nil {
		return Checkin{}, err
	}
	return c, nil
}

// ListRecent returns the user's check-ins of the last days calendar days,
// newest first. Days without a record are omitted.
func (r *Repository) ListRecent(ctx context.Context, userID string, days int, now time.Time) ([]Checkin, error) {
	since := truncate(now).AddDate(0, 0, -(days - 1))
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, water_checked, fruit_checked FROM health_checkin
		 WHERE user_id = ? AND date >= ? ORDER BY date DESC`,
		userID, since.Format(database.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []Checkin
	for rows.Next() {
		var (
			c    = Checkin{UserID: userID}
			date string
		)
		if err := rows.Scan(&date, &c.Water, &c.Fruit); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		d, err := time.ParseInLocation(database.DateLayout, date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid check-in date %q: %w", date, err)
		}
		c.Date = d
		out = append(out, c)
	}
	return out, rows.Err()
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
