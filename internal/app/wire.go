package app

import (
	"honeyeat/internal/database"
	"honeyeat/internal/food"
	"honeyeat/internal/health"
	"honeyeat/internal/history"
	"honeyeat/internal/metrics"
	"honeyeat/internal/pantry"
	"honeyeat/internal/preference"
	"honeyeat/internal/recommend"
	"honeyeat/internal/shopping"
)

// NewFromDB wires the SQLite repositories into an App.
func NewFromDB(db *database.DB, engine *recommend.Engine) *App {
	return NewApp(Stores{
		Foods:       food.NewRepository(db.SQL),
		Preferences: preference.NewRepository(db.SQL),
		Pantry:      pantry.NewRepository(db.SQL),
		Recipes:     pantry.NewRecipeRepository(db.SQL),
		History:     history.NewRepository(db.SQL),
		Shopping:    shopping.NewRepository(db.SQL),
		Checkins:    health.NewRepository(db.SQL),
		Metrics:     metrics.NewStore(db.SQL),
	}, engine)
}
