package preference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is a row of the users table.
type User struct {
	Username    string
	DisplayName string
	Preferences Preferences
}

// Repository reads and writes user preferences.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get returns the preferences of userID, or the defaults when the user has
// none stored. A stored blob that fails to decode is an error.
func (r *Repository) Get(ctx context.Context, userID string) (Preferences, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT preferences FROM users WHERE username = ?`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Default(), nil
		}
		return Preferences{}, fmt.Errorf("failed to get preferences for %s: %w", userID, err)
	}
	prefs, err := Decode([]byte(raw))
	if err != nil {
		return Preferences{}, fmt.Errorf("stored preferences for %s: %w", userID, err)
	}
	return prefs, nil
}

// Save replaces the preferences of userID wholesale.
func (r *Repository) Save(ctx context.Context, userID string, prefs Preferences) error {
	data, err := prefs.Encode()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET preferences = ? WHERE username = ?`, string(data), userID)
	if err != nil {
		return fmt.Errorf("failed to save preferences for %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save preferences for %s: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}

// CreateUser registers a user with default preferences. Existing users are left untouched.
func (r *Repository) CreateUser(ctx context.Context, username, displayName string) error {
	data, err := Default().Encode()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, display_name, preferences) VALUES (?, ?, ?)`,
		username, displayName, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return nil
}

// GetUser returns a user or nil when not found.
func (r *Repository) GetUser(ctx context.Context, username string) (*User, error) {
	var (
		u   User
		raw string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, display_name, preferences FROM users WHERE username = ?`, username,
	).Scan(&u.Username, &u.DisplayName, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	if u.Preferences, err = Decode([]byte(raw)); err != nil {
		return nil, fmt.Errorf("stored preferences for %s: %w", username, err)
	}
	return &u, nil
}
