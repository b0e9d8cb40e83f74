package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"honeyeat/internal/database"
)

// Repository stores pantry items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Increment adds n to the ingredient's quantity, creating the item if needed.
func (r *Repository) Increment(ctx context.Context, userID, ingredient string, n int) error {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if n <= 0 {
		return fmt.Errorf("quantity to add must be positive, got %d", n)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pantry (user_id, ingredient, quantity, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, ingredient) DO UPDATE SET
		   quantity = quantity + excluded.quantity,
		   updated_at = excluded.updated_at`,
		userID, ingredient, n, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to add %s to pantry: %w", ingredient, err)
	}
	return nil
}

// Decrement removes n from the ingredient's quantity and deletes the item when
// nothing is left. It returns the remaining quantity; a missing item is left
// alone and reports 0.
func (r *Repository) Decrement(ctx context.Context, userID, ingredient string, n int) (int, error) {
	ingredient = strings.TrimSpace(ingredient)
	if n <= 0 {
		return 0, fmt.Errorf("quantity to use must be positive, got %d", n)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var qty int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM pantry WHERE user_id = ? AND ingredient = ?`, userID, ingredient,
	).Scan(&qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read pantry item %s: %w", ingredient, err)
	}

	remaining := max(qty-n, 0)
	if remaining == 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM pantry WHERE user_id = ? AND ingredient = ?`, userID, ingredient)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE pantry SET quantity = ?, updated_at = ? WHERE user_id = ? AND ingredient = ?`,
			remaining, now(), userID, ingredient,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update pantry item %s: %w", ingredient, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pantry update: %w", err)
	}
	return remaining, nil
}

// Delete removes an ingredient regardless of its quantity.
func (r *Repository) Delete(ctx context.Context, userID, ingredient string) error {
	ingredient = strings.TrimSpace(ingredient)
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM pantry WHERE user_id = ? AND ingredient = ?`, userID, ingredient,
	); err != nil {
		return fmt.Errorf("failed to delete pantry item %s: %w", ingredient, err)
	}
	return nil
}

// List returns the user's pantry ordered by ingredient.
func (r *Repository) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, ingredient, quantity, updated_at FROM pantry
		 WHERE user_id = ? AND quantity > 0 ORDER BY ingredient`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry for %s: %w", userID, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it        Item
			updatedAt string
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.Ingredient, &it.Quantity, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		if t, err := time.Parse(database.TimestampLayout, updatedAt); err == nil {
			it.UpdatedAt = t
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pantry: %w", err)
	}
	return items, nil
}

// Ingredients returns the names of everything the user owns.
func (r *Repository) Ingredients(ctx context.Context, userID string) ([]string, error) {
	items, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Ingredient)
	}
	return names, nil
}

func now() string {
	return time.Now().UTC().Format(database.TimestampLayout)
}
