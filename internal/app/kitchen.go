package app

import (
	"context"
	"fmt"
	"time"

	"honeyeat/internal/health"
	"honeyeat/internal/pantry"
	"honeyeat/internal/shopping"
)

// CookResult is what can be cooked from the pantry.
type CookResult struct {
	Owned  []string
	Ready  []pantry.Match
	Almost []pantry.Match
}

// Cook matches the user's pantry against the builtin book merged with the
// user's own recipes.
func (a *App) Cook(ctx context.Context, userID string) (*CookResult, error) {
	start := time.Now()
	owned, matches, err := a.match(ctx, userID)
	a.record(ctx, "cook", "pantry", userID, len(matches), start, err, len(matches) == 0)
	if err != nil {
		return nil, err
	}
	ready, almost := pantry.Partition(matches)
	return &CookResult{Owned: owned, Ready: ready, Almost: almost}, nil
}

// AddMissingToShopping puts the ingredients the recipe still needs on the
// shopping list and returns them.
func (a *App) AddMissingToShopping(ctx context.Context, userID, recipe string) ([]string, error) {
	_, matches, err := a.match(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.Name != recipe {
			continue
		}
		if len(m.Missing) == 0 {
			return nil, nil
		}
		if err := a.stores.Shopping.UpsertItems(ctx, userID, m.Missing); err != nil {
			return nil, fmt.Errorf("failed to add missing ingredients: %w", err)
		}
		return m.Missing, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipe)
}

// SaveRecipe adds a recipe to the user's own book.
func (a *App) SaveRecipe(ctx context.Context, userID string, rec pantry.Recipe) error {
	return a.stores.Recipes.Save(ctx, userID, rec)
}

func (a *App) match(ctx context.Context, userID string) ([]string, []pantry.Match, error) {
	owned, err := a.stores.Pantry.Ingredients(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pantry: %w", err)
	}
	custom, err := a.stores.Recipes.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	matches, err := pantry.MatchRecipes(owned, pantry.MergeBook(pantry.BuiltinRecipes, custom))
	if err != nil {
		return nil, nil, err
	}
	return owned, matches, nil
}

// Pantry lists the user's ingredients.
func (a *App) Pantry(ctx context.Context, userID string) ([]pantry.Item, error) {
	return a.stores.Pantry.List(ctx, userID)
}

// Stock adds n of an ingredient to the pantry.
func (a *App) Stock(ctx context.Context, userID, ingredient string, n int) error {
	return a.stores.Pantry.Increment(ctx, userID, ingredient, n)
}

// Use takes n of an ingredient out of the pantry and returns what is left.
func (a *App) Use(ctx context.Context, userID, ingredient string, n int) (int, error) {
	return a.stores.Pantry.Decrement(ctx, userID, ingredient, n)
}

// ShoppingList returns the list with the bought percentage.
func (a *App) ShoppingList(ctx context.Context, userID string) ([]shopping.Item, int, error) {
	items, err := a.stores.Shopping.List(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, shopping.Progress(items), nil
}

// Bought marks a shopping item bought and stocks the pantry with it.
func (a *App) Bought(ctx context.Context, userID, name string) (bool, error) {
	n, err := a.stores.Shopping.MarkBoughtByName(ctx, userID, name)
	if err != nil || n == 0 {
		return false, err
	}
	if err := a.stores.Pantry.Increment(ctx, userID, name, 1); err != nil {
		return true, fmt.Errorf("failed to stock %s: %w", name, err)
	}
	return true, nil
}

// ClearBought removes bought items from the list.
func (a *App) ClearBought(ctx context.Context, userID string) (int64, error) {
	return a.stores.Shopping.ClearBought(ctx, userID)
}

// Checkin returns today's check-in.
func (a *App) Checkin(ctx context.Context, userID string) (health.Checkin, error) {
	return a.stores.Checkins.Get(ctx, userID, a.now())
}

// ToggleHabit flips one habit of today's check-in.
func (a *App) ToggleHabit(ctx context.Context, userID, habit string) (health.Checkin, error) {
	return a.stores.Checkins.Toggle(ctx, userID, a.now(), habit)
}
