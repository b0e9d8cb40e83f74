// Package app composes the stores and the two engines into the operations the
// bot and the CLI expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"honeyeat/internal/food"
	"honeyeat/internal/health"
	"honeyeat/internal/history"
	"honeyeat/internal/logging"
	"honeyeat/internal/metrics"
	"honeyeat/internal/pantry"
	"honeyeat/internal/preference"
	"honeyeat/internal/recommend"
	"honeyeat/internal/shopping"
)

var (
	// ErrNoCandidates is returned when every food was filtered out.
	ErrNoCandidates = errors.New("no food left to recommend")
	// ErrRecipeNotFound is returned when a recipe name is not in the user's book.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrFoodNotFound is returned when a reference matches no catalog entry.
	ErrFoodNotFound = errors.New("food not found")
)

// DefaultRating is recorded when a meal is confirmed without a rating.
const DefaultRating = 5

// FoodStore reads and manages the catalog. A zero since disables the
// recently-eaten exclusion.
type FoodStore interface {
	ListActive(ctx context.Context, since time.Time, userID string) ([]food.Record, error)
	Get(ctx context.Context, id int64) (*food.Record, error)
	GetByName(ctx context.Context, name string) (*food.Record, error)
	Create(ctx context.Context, rec food.Record) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Categories(ctx context.Context) ([]food.Category, error)
}

// PreferenceStore saves preferences wholesale.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (preference.Preferences, error)
	Save(ctx context.Context, userID string, prefs preference.Preferences) error
	CreateUser(ctx context.Context, username, displayName string) error
}

type PantryStore interface {
	Ingredients(ctx context.Context, userID string) ([]string, error)
	List(ctx context.Context, userID string) ([]pantry.Item, error)
	Increment(ctx context.Context, userID, ingredient string, n int) error
	Decrement(ctx context.Context, userID, ingredient string, n int) (int, error)
}

type RecipeStore interface {
	ListByUser(ctx context.Context, userID string) ([]pantry.Recipe, error)
	Save(ctx context.Context, userID string, rec pantry.Recipe) error
}

// HistoryStore must report every failed write.
type HistoryStore interface {
	Append(ctx context.Context, e history.Entry) (int64, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]history.Entry, error)
	Stats(ctx context.Context, userID string) (*history.Stats, error)
}

type ShoppingStore interface {
	UpsertItems(ctx context.Context, userID string, names []string) error
	List(ctx context.Context, userID string) ([]shopping.Item, error)
	MarkBoughtByName(ctx context.Context, userID, name string) (int64, error)
	ClearBought(ctx context.Context, userID string) (int64, error)
}

type CheckinStore interface {
	Get(ctx context.Context, userID string, day time.Time) (health.Checkin, error)
	Toggle(ctx context.Context, userID string, day time.Time, habit string) (health.Checkin, error)
}

type MetricsRecorder interface {
	Record(ctx context.Context, m metrics.ExecutionMetric) error
}

// Stores groups the collaborators of App.
type Stores struct {
	Foods       FoodStore
	Preferences PreferenceStore
	Pantry      PantryStore
	Recipes     RecipeStore
	History     HistoryStore
	Shopping    ShoppingStore
	Checkins    CheckinStore
	Metrics     MetricsRecorder
}

// App holds the application's dependencies.
type App struct {
	stores Stores
	engine *recommend.Engine
	now    func() time.Time
}

// NewApp creates a new App. A nil engine gets the default rules and random source.
func NewApp(stores Stores, engine *recommend.Engine) *App {
	if engine == nil {
		engine = recommend.NewEngine()
	}
	return &App{stores: stores, engine: engine, now: time.Now}
}

// Recommend runs the questionnaire through the scoring engine.
func (a *App) Recommend(ctx context.Context, userID string, answers recommend.Answers) (*recommend.Result, error) {
	start := time.Now()
	req, err := a.request(ctx, userID, answers)
	if err != nil {
		return nil, err
	}

	res, err := a.engine.Recommend(req)
	a.record(ctx, "recommend", history.ModeSmart, userID, len(req.Catalog), start, err, res == nil)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNoCandidates
	}
	logging.Info().Str("user", userID).Str("food", res.Choice.Food.Name).Int("score", res.Choice.Score).Msg("recommended")
	return res, nil
}

// PK draws two contenders for the user to choose between.
func (a *App) PK(ctx context.Context, userID string, answers recommend.Answers) ([]recommend.ScoredCandidate, error) {
	start := time.Now()
	req, err := a.request(ctx, userID, answers)
	if err != nil {
		return nil, err
	}

	duel, err := a.engine.PK(req)
	a.record(ctx, "pk", history.ModePK, userID, len(req.Catalog), start, err, len(duel) == 0)
	if err != nil {
		return nil, err
	}
	if len(duel) == 0 {
		return nil, ErrNoCandidates
	}
	return duel, nil
}

// Random picks any eligible food, ignoring scores.
func (a *App) Random(ctx context.Context, userID string, excludeRecent bool) (*recommend.ScoredCandidate, error) {
	start := time.Now()
	req, err := a.request(ctx, userID, recommend.Answers{ExcludeRecent: excludeRecent})
	if err != nil {
		return nil, err
	}

	pick := a.engine.Random(req)
	a.record(ctx, "random", history.ModeRandom, userID, len(req.Catalog), start, nil, pick == nil)
	if pick == nil {
		return nil, ErrNoCandidates
	}
	return pick, nil
}

// Confirm records that the user is eating f. The write error is always
// returned.
func (a *App) Confirm(ctx context.Context, userID string, f food.Record, slot recommend.Slot, mode string, rating int) (int64, error) {
	if rating == 0 {
		rating = DefaultRating
	}
	id, err := a.stores.History.Append(ctx, history.Entry{
		Date:     a.now(),
		MealSlot: string(slot),
		FoodID:   f.ID,
		FoodName: f.Name,
		UserID:   userID,
		Rating:   rating,
		Mode:     mode,
	})
	if err != nil {
		logging.Error().Err(err).Str("user", userID).Str("food", f.Name).Msg("failed to record meal")
		return 0, fmt.Errorf("failed to record meal: %w", err)
	}
	return id, nil
}

// ConfirmByName records a meal chosen by name. Names outside the catalog are
// stored without a food ID.
func (a *App) ConfirmByName(ctx context.Context, userID, name string, slot recommend.Slot, mode string, rating int) (int64, error) {
	rec, err := a.stores.Foods.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		rec = &food.Record{Name: name}
	}
	return a.Confirm(ctx, userID, *rec, slot, mode, rating)
}

// ConfirmByID records a meal chosen from the catalog and returns its name.
func (a *App) ConfirmByID(ctx context.Context, userID string, id int64, slot recommend.Slot, mode string, rating int) (string, error) {
	rec, err := a.stores.Foods.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", fmt.Errorf("%w: %d", ErrFoodNotFound, id)
	}
	if _, err := a.Confirm(ctx, userID, *rec, slot, mode, rating); err != nil {
		return "", err
	}
	return rec.Name, nil
}

// Stats summarizes the user's history.
func (a *App) Stats(ctx context.Context, userID string) (*history.Stats, error) {
	return a.stores.History.Stats(ctx, userID)
}

// request gathers the snapshot the engine works on.
func (a *App) request(ctx context.Context, userID string, answers recommend.Answers) (recommend.Request, error) {
	now := a.now()
	req := recommend.Request{UserID: userID, Answers: answers, Now: now}

	prefs, err := a.stores.Preferences.Get(ctx, userID)
	if err != nil {
		return req, fmt.Errorf("failed to load preferences: %w", err)
	}
	req.Preferences = prefs

	var since time.Time
	if answers.ExcludeRecent {
		y, m, d := now.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -recommend.RecentDays)
		if req.History, err = a.stores.History.ListSince(ctx, userID, since); err != nil {
			return req, fmt.Errorf("failed to load history: %w", err)
		}
	}
	if req.Catalog, err = a.stores.Foods.ListActive(ctx, since, userID); err != nil {
		return req, fmt.Errorf("failed to load foods: %w", err)
	}
	return req, nil
}

func (a *App) record(ctx context.Context, op, mode, userID string, candidates int, start time.Time, err error, empty bool) {
	if a.stores.Metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case empty:
		outcome = metrics.OutcomeNoCandidates
	}
	m := metrics.ExecutionMetric{
		Operation:  op,
		Mode:       mode,
		UserID:     userID,
		Candidates: candidates,
		Outcome:    outcome,
		Latency:    time.Since(start),
	}
	if err := a.stores.Metrics.Record(ctx, m); err != nil {
		logging.Warn().Err(err).Str("operation", op).Msg("failed to record metrics")
	}
}
