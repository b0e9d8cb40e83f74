package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"honeyeat/internal/database"
)

// Repository handles persistence of shopping list items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Add puts a single item on the list and returns its ID.
func (r *Repository) Add(ctx context.Context, item Item) (int64, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return 0, fmt.Errorf("item name is required")
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_list (user_id, item_name, quantity, category, is_bought, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		item.UserID, item.Name, item.Quantity, item.Category, now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping item: %w", err)
	}
	return res.LastInsertId()
}

// UpsertItems makes sure every name is on the list and still to buy. Names
// already waiting to be bought are left untouched; bought ones are put back.
func (r *Repository) UpsertItems(ctx context.Context, userID string, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var (
			id     int64
			bought bool
		)
		err := tx.QueryRowContext(ctx,
			`SELECT id, is_bought FROM shopping_list WHERE user_id = ? AND item_name = ?
			 ORDER BY is_bought, id LIMIT 1`, userID, name,
		).Scan(&id, &bought)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				`INSERT INTO shopping_list (user_id, item_name, quantity, category, is_bought, created_at)
				 VALUES (?, ?, 1, '', 0, ?)`, userID, name, now(),
			)
		case err != nil:
		case bought:
			_, err = tx.ExecContext(ctx, `UPDATE shopping_list SET is_bought = 0 WHERE id = ?`, id)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert shopping item %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shopping items: %w", err)
	}
	return nil
}

// List returns the user's items, unbought first.
func (r *Repository) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, item_name, quantity, category, is_bought, created_at
		 FROM shopping_list WHERE user_id = ? ORDER BY is_bought, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items for %s: %w", userID, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it        Item
			createdAt string
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.Name, &it.Quantity, &it.Category, &it.Bought, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan shopping item: %w", err)
		}
		if t, err := time.Parse(database.TimestampLayout, createdAt); err == nil {
			it.CreatedAt = t
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping items: %w", err)
	}
	return items, nil
}

// SetBought marks an item as bought or not. It reports whether the item exists.
func (r *Repository) SetBought(ctx context.Context, userID string, id int64, bought bool) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shopping_list SET is_bought = ? WHERE id = ? AND user_id = ?`, bought, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update shopping item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkBoughtByName marks every unbought item with this name as bought and
// returns how many were updated.
func (r *Repository) MarkBoughtByName(ctx context.Context, userID, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shopping_list SET is_bought = 1 WHERE user_id = ? AND item_name = ? AND is_bought = 0`,
		userID, strings.TrimSpace(name),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark %s bought: %w", name, err)
	}
	return res.RowsAffected()
}

// ClearBought deletes bought items and returns how many were removed.
func (r *Repository) ClearBought(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_list WHERE user_id = ? AND is_bought = 1`, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear bought items for %s: %w", userID, err)
	}
	return res.RowsAffected()
}

func now() string {
	return time.Now().UTC().Format(database.TimestampLayout)
}
