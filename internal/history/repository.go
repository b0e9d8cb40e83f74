package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"honeyeat/internal/database"
)

var validate = validator.New()

// Repository stores the append-only consumption log.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Append records an entry and returns its ID. Every failure is returned to
// the caller; a confirmed meal is never dropped silently.
func (r *Repository) Append(ctx context.Context, e Entry) (int64, error) {
	if err := validate.Struct(e); err != nil {
		return 0, fmt.Errorf("invalid history entry: %w", err)
	}
	if e.Rating < 1 || e.Rating > 5 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRating, e.Rating)
	}
	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}

	var foodID sql.NullInt64
	if e.FoodID != 0 {
		foodID = sql.NullInt64{Int64: e.FoodID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO eat_history (date, meal_time, food_id, food_name, user_id, rating, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		date.Format(database.DateLayout), e.MealSlot, foodID, e.FoodName, e.UserID, e.Rating, e.Mode,
		time.Now().UTC().Format(database.TimestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history entry: %w", err)
	}
	return res.LastInsertId()
}

// ListSince returns the user's entries dated on or after since, newest first.
func (r *Repository) ListSince(ctx context.Context, userID string, since time.Time) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, meal_time, food_id, food_name, user_id, rating, mode, created_at
		 FROM eat_history WHERE user_id = ? AND date >= ?
		 ORDER BY date DESC, id DESC`,
		userID, since.Format(database.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for %s: %w", userID, err)
	}
	return collect(rows)
}

// ListRecent returns the user's latest limit entries.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, meal_time, food_id, food_name, user_id, rating, mode, created_at
		 FROM eat_history WHERE user_id = ?
		 ORDER BY date DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent history for %s: %w", userID, err)
	}
	return collect(rows)
}

// Stats aggregates the user's whole history.
func (r *Repository) Stats(ctx context.Context, userID string) (*Stats, error) {
	var (
		s   Stats
		avg sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(rating) FROM eat_history WHERE user_id = ?`, userID,
	).Scan(&s.Total, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to count history for %s: %w", userID, err)
	}
	s.AverageRating = avg.Float64
	if s.Total == 0 {
		return &s, nil
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT food_name, COUNT(*) AS n FROM eat_history WHERE user_id = ?
		 GROUP BY food_name ORDER BY n DESC, MAX(id) DESC LIMIT 1`, userID,
	).Scan(&s.MostCommon, &s.MostCommonN)
	if err != nil {
		return nil, fmt.Errorf("failed to find most common food for %s: %w", userID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT mode, COUNT(*) AS n FROM eat_history WHERE user_id = ?
		 GROUP BY mode ORDER BY n DESC, mode`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to group history modes for %s: %w", userID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var mc ModeCount
		if err := rows.Scan(&mc.Mode, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan mode count: %w", err)
		}
		s.Modes = append(s.Modes, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func collect(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			date      string
			mealTime  sql.NullString
			foodID    sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &date, &mealTime, &foodID, &e.FoodName, &e.UserID, &e.Rating, &e.Mode, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		d, err := time.ParseInLocation(database.DateLayout, date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid history date %q: %w", date, err)
		}
		e.Date = d
		e.MealSlot = mealTime.String
		e.FoodID = foodID.Int64
		if t, err := time.Parse(database.TimestampLayout, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}
