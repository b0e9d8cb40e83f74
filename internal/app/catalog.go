package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"honeyeat/internal/food"
	"honeyeat/internal/history"
	"honeyeat/internal/logging"
	"honeyeat/internal/recommend"
)

// AddFood adds an active dish to the catalog. An empty cost tier means "$$".
func (a *App) AddFood(ctx context.Context, rec food.Record) (int64, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Cost == "" {
		rec.Cost = food.CostMedium
	}
	rec.Active = true
	id, err := a.stores.Foods.Create(ctx, rec)
	if err != nil {
		return 0, err
	}
	logging.Info().Str("food", rec.Name).Str("category", string(rec.Category)).Msg("food added")
	return id, nil
}

// SetFoodActive enables or disables a dish by name.
func (a *App) SetFoodActive(ctx context.Context, name string, active bool) error {
	rec, err := a.stores.Foods.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrFoodNotFound, name)
	}
	return a.stores.Foods.SetActive(ctx, rec.ID, active)
}

// Categories lists the categories that have at least one active dish.
func (a *App) Categories(ctx context.Context) ([]food.Category, error) {
	return a.stores.Foods.Categories(ctx)
}

// PickFromCategory draws uniformly among the eligible dishes of one category.
func (a *App) PickFromCategory(ctx context.Context, userID string, category food.Category, excludeRecent bool) (*recommend.ScoredCandidate, error) {
	start := time.Now()
	req, err := a.request(ctx, userID, recommend.Answers{ExcludeRecent: excludeRecent})
	if err != nil {
		return nil, err
	}

	var inCategory []food.Record
	for _, f := range req.Catalog {
		if f.Category == category {
			inCategory = append(inCategory, f)
		}
	}
	req.Catalog = inCategory

	pick := a.engine.Random(req)
	a.record(ctx, "category", history.ModeCategory, userID, len(req.Catalog), start, nil, pick == nil)
	if pick == nil {
		return nil, ErrNoCandidates
	}
	return pick, nil
}
