package pantry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// RecipeRepository stores recipes users add to their own book.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(d *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: d}
}

// Save creates or replaces the user's recipe with the same name.
func (r *RecipeRepository) Save(ctx context.Context, userID string, rec Recipe) error {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	rec.Ingredients = dedupe(rec.Ingredients)
	if len(rec.Ingredients) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRecipe, rec.Name)
	}

	data, err := json.Marshal(rec.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe ingredients: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_recipes (user_id, name, ingredients, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, name) DO UPDATE SET ingredients = excluded.ingredients`,
		userID, rec.Name, string(data), now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.Name, err)
	}
	return nil
}

// ListByUser returns the user's recipes in the order they were first saved.
func (r *RecipeRepository) ListByUser(ctx context.Context, userID string) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, ingredients FROM user_recipes WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for %s: %w", userID, err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var (
			rec  Recipe
			data string
		)
		if err := rows.Scan(&rec.Name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients of %s: %w", rec.Name, err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

// Delete removes one of the user's recipes.
func (r *RecipeRepository) Delete(ctx context.Context, userID, name string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM user_recipes WHERE user_id = ? AND name = ?`, userID, name,
	); err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", name, err)
	}
	return nil
}
