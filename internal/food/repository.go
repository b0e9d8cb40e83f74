package food

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"honeyeat/internal/database"
)

const foodColumns = `id, name, category, cost_level, health_tag, recipe_link, active, created_at`

// Repository is a database-backed catalog of foods.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create inserts a new food and returns its ID.
func (r *Repository) Create(ctx context.Context, rec Record) (int64, error) {
	if err := validate(rec); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO foods (name, category, cost_level, health_tag, recipe_link, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Name, string(rec.Category), string(rec.Cost), nullString(string(rec.Tag)),
		nullString(rec.RecipeLink), rec.Active, time.Now().UTC().Format(database.TimestampLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateName, rec.Name)
		}
		return 0, fmt.Errorf("failed to insert food: %w", err)
	}
	return res.LastInsertId()
}

// Update overwrites the editable fields of an existing food.
func (r *Repository) Update(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE foods SET name = ?, category = ?, cost_level = ?, health_tag = ?, recipe_link = ?, active = ?
		 WHERE id = ?`,
		rec.Name, string(rec.Category), string(rec.Cost), nullString(string(rec.Tag)),
		nullString(rec.RecipeLink), rec.Active, rec.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, rec.Name)
		}
		return fmt.Errorf("failed to update food %d: %w", rec.ID, err)
	}
	return nil
}

// SetActive enables or disables a food without deleting it.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE foods SET active = ? WHERE id = ?`, active, id); err != nil {
		return fmt.Errorf("failed to set active flag for food %d: %w", id, err)
	}
	return nil
}

// Delete removes a food permanently. Reserved for explicit admin action.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete food %d: %w", id, err)
	}
	return nil
}

// Get retrieves a food by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Food not found
		}
		return nil, fmt.Errorf("failed to get food by ID: %w", err)
	}
	return rec, nil
}

// GetByName retrieves a food by its unique name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE name = ?`, name)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get food by name: %w", err)
	}
	return rec, nil
}

// List returns the whole catalog ordered by ID.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	return collect(rows)
}

// ListActive returns active foods. When since is non-zero, foods userID has
// eaten on or after that calendar day are left out.
func (r *Repository) ListActive(ctx context.Context, since time.Time, userID string) ([]Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if since.IsZero() {
		rows, err = r.db.QueryContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE active = 1 ORDER BY id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+foodColumns+` FROM foods
			 WHERE active = 1
			   AND id NOT IN (
			     SELECT food_id FROM eat_history
			     WHERE user_id = ? AND date >= ? AND food_id IS NOT NULL
			   )
			 ORDER BY id`,
			userID, since.Format(database.DateLayout),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list active foods: %w", err)
	}
	return collect(rows)
}

// Categories returns the distinct categories of active foods.
func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM foods WHERE active = 1 ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, Category(c))
	}
	return cats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec        Record
		category   string
		cost       string
		tag        sql.NullString
		recipeLink sql.NullString
		createdAt  string
	)
	if err := s.Scan(&rec.ID, &rec.Name, &category, &cost, &tag, &recipeLink, &rec.Active, &createdAt); err != nil {
		return nil, err
	}
	rec.Category = Category(category)
	rec.Cost = CostTier(cost)
	rec.Tag = HealthTag(tag.String)
	rec.RecipeLink = recipeLink.String
	if t, err := time.Parse(database.TimestampLayout, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return &rec, nil
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate foods: %w", err)
	}
	return recs, nil
}

func validate(rec Record) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("food name is required")
	}
	if rec.Category == "" {
		return fmt.Errorf("food category is required")
	}
	if !rec.Cost.Valid() {
		return fmt.Errorf("invalid cost level %q", rec.Cost)
	}
	if !rec.Tag.Valid() {
		return fmt.Errorf("invalid health tag %q", rec.Tag)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
