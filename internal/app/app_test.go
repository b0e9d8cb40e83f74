package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"honeyeat/internal/food"
	"honeyeat/internal/health"
	"honeyeat/internal/history"
	"honeyeat/internal/metrics"
	"honeyeat/internal/pantry"
	"honeyeat/internal/preference"
	"honeyeat/internal/recommend"
	"honeyeat/internal/shopping"
)

type mockFoods struct {
	foods     []food.Record
	lastSince time.Time
}

func (m *mockFoods) ListActive(ctx context.Context, since time.Time, userID string) ([]food.Record, error) {
	m.lastSince = since
	return m.foods, nil
}

func (m *mockFoods) Get(ctx context.Context, id int64) (*food.Record, error) {
	for _, f := range m.foods {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, nil
}

func (m *mockFoods) GetByName(ctx context.Context, name string) (*food.Record, error) {
	for _, f := range m.foods {
		if f.Name == name {
			return &f, nil
		}
	}
	return nil, nil
}

func (m *mockFoods) Create(ctx context.Context, rec food.Record) (int64, error) {
	for _, f := range m.foods {
		if f.Name == rec.Name {
			return 0, food.ErrDuplicateName
		}
	}
	rec.ID = int64(len(m.foods) + 1)
	m.foods = append(m.foods, rec)
	return rec.ID, nil
}

func (m *mockFoods) SetActive(ctx context.Context, id int64, active bool) error {
	for i := range m.foods {
		if m.foods[i].ID == id {
			m.foods[i].Active = active
		}
	}
	return nil
}

func (m *mockFoods) Categories(ctx context.Context) ([]food.Category, error) {
	var cats []food.Category
	for _, f := range m.foods {
		if f.Active && !slices.Contains(cats, f.Category) {
			cats = append(cats, f.Category)
		}
	}
	return cats, nil
}

type mockPrefs struct {
	prefs   preference.Preferences
	saves   int
	users   []string
	saveErr error
}

func (m *mockPrefs) Get(ctx context.Context, userID string) (preference.Preferences, error) {
	return m.prefs, nil
}

func (m *mockPrefs) Save(ctx context.Context, userID string, prefs preference.Preferences) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.prefs = prefs
	m.saves++
	return nil
}

func (m *mockPrefs) CreateUser(ctx context.Context, username, displayName string) error {
	m.users = append(m.users, username)
	return nil
}

type mockPantry struct {
	items map[string]int
}

func (m *mockPantry) Ingredients(ctx context.Context, userID string) ([]string, error) {
	var names []string
	for k := range m.items {
		names = append(names, k)
	}
	slices.Sort(names)
	return names, nil
}

func (m *mockPantry) List(ctx context.Context, userID string) ([]pantry.Item, error) {
	var items []pantry.Item
	for k, v := range m.items {
		items = append(items, pantry.Item{UserID: userID, Ingredient: k, Quantity: v})
	}
	return items, nil
}

func (m *mockPantry) Increment(ctx context.Context, userID, ingredient string, n int) error {
	m.items[ingredient] += n
	return nil
}

func (m *mockPantry) Decrement(ctx context.Context, userID, ingredient string, n int) (int, error) {
	left := max(m.items[ingredient]-n, 0)
	if left == 0 {
		delete(m.items, ingredient)
	} else {
		m.items[ingredient] = left
	}
	return left, nil
}

type mockRecipes struct {
	recipes []pantry.Recipe
}

func (m *mockRecipes) ListByUser(ctx context.Context, userID string) ([]pantry.Recipe, error) {
	return m.recipes, nil
}

func (m *mockRecipes) Save(ctx context.Context, userID string, rec pantry.Recipe) error {
	m.recipes = append(m.recipes, rec)
	return nil
}

type mockHistory struct {
	entries []history.Entry
	err     error
}

func (m *mockHistory) Append(ctx context.Context, e history.Entry) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.entries = append(m.entries, e)
	return int64(len(m.entries)), nil
}

func (m *mockHistory) ListSince(ctx context.Context, userID string, since time.Time) ([]history.Entry, error) {
	return m.entries, nil
}

func (m *mockHistory) Stats(ctx context.Context, userID string) (*history.Stats, error) {
	return &history.Stats{Total: len(m.entries)}, nil
}

type mockShopping struct {
	names []string
}

func (m *mockShopping) UpsertItems(ctx context.Context, userID string, names []string) error {
	for _, n := range names {
		if !slices.Contains(m.names, n) {
			m.names = append(m.names, n)
		}
	}
	return nil
}

func (m *mockShopping) List(ctx context.Context, userID string) ([]shopping.Item, error) {
	var items []shopping.Item
	for _, n := range m.names {
		items = append(items, shopping.Item{Name: n})
	}
	return items, nil
}

func (m *mockShopping) MarkBoughtByName(ctx context.Context, userID, name string) (int64, error) {
	if slices.Contains(m.names, name) {
		return 1, nil
	}
	return 0, nil
}

func (m *mockShopping) ClearBought(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

type mockCheckins struct{}

func (mockCheckins) Get(ctx context.Context, userID string, day time.Time) (health.Checkin, error) {
	return health.Checkin{UserID: userID, Date: day}, nil
}

func (mockCheckins) Toggle(ctx context.Context, userID string, day time.Time, habit string) (health.Checkin, error) {
	return health.Checkin{UserID: userID, Date: day, Water: habit == health.HabitWater}, nil
}

type mockMetrics struct {
	recorded []metrics.ExecutionMetric
}

func (m *mockMetrics) Record(ctx context.Context, em metrics.ExecutionMetric) error {
	m.recorded = append(m.recorded, em)
	return nil
}

type fixture struct {
	app      *App
	foods    *mockFoods
	prefs    *mockPrefs
	pantry   *mockPantry
	history  *mockHistory
	shopping *mockShopping
	metrics  *mockMetrics
}

func newFixture() *fixture {
	f := &fixture{
		foods: &mockFoods{foods: []food.Record{
			{ID: 1, Name: "包子", Category: food.CategoryBreakfast, Cost: food.CostLow, Tag: food.TagNormal, Active: true},
			{ID: 2, Name: "重庆火锅", Category: food.CategoryBigMeal, Cost: food.CostHigh, Tag: food.TagCheatMeal, Active: true},
		}},
		prefs:    &mockPrefs{prefs: preference.Default()},
		pantry:   &mockPantry{items: map[string]int{"番茄": 2}},
		history:  &mockHistory{},
		shopping: &mockShopping{},
		metrics:  &mockMetrics{},
	}
	f.app = NewApp(Stores{
		Foods:       f.foods,
		Preferences: f.prefs,
		Pantry:      f.pantry,
		Recipes:     &mockRecipes{},
		History:     f.history,
		Shopping:    f.shopping,
		Checkins:    mockCheckins{},
		Metrics:     f.metrics,
	}, recommend.NewEngine(recommend.WithSource(rand.New(rand.NewPCG(1, 2)))))
	f.app.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local) }
	return f
}

func breakfastAnswers() recommend.Answers {
	return recommend.Answers{
		Slot:         recommend.SlotBreakfast,
		Mood:         recommend.MoodNeutral,
		Appetite:     recommend.AppetiteNormal,
		Flavor:       recommend.FlavorAnything,
		TimePressure: recommend.TimeRushed,
	}
}

func TestRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		res, err := f.app.Recommend(ctx, "bf", breakfastAnswers())
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(res.Top) != 2 || res.Top[0].Food.Name != "包子" {
			t.Errorf("Expected 包子 ranked first, got %+v", res.Top)
		}
		if !f.foods.lastSince.IsZero() {
			t.Errorf("Expected no exclusion window, got %v", f.foods.lastSince)
		}
		if len(f.metrics.recorded) != 1 || f.metrics.recorded[0].Outcome != metrics.OutcomeOK {
			t.Errorf("Expected one ok metric, got %+v", f.metrics.recorded)
		}
	})

	t.Run("ExcludeRecentWindow", func(t *testing.T) {
		f := newFixture()
		answers := breakfastAnswers()
		answers.ExcludeRecent = true
		if _, err := f.app.Recommend(ctx, "bf", answers); err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		want := time.Date(2026, 10, 16, 0, 0, 0, 0, time.Local)
		if !f.foods.lastSince.Equal(want) {
			t.Errorf("Expected window from %v, got %v", want, f.foods.lastSince)
		}
	})

	t.Run("NoCandidates", func(t *testing.T) {
		f := newFixture()
		f.prefs.prefs.Blacklist = []string{"包子", "重庆火锅"}
		_, err := f.app.Recommend(ctx, "bf", breakfastAnswers())
		if !errors.Is(err, ErrNoCandidates) {
			t.Fatalf("Expected ErrNoCandidates, got %v", err)
		}
		if f.metrics.recorded[0].Outcome != metrics.OutcomeNoCandidates {
			t.Errorf("Expected no_candidates outcome, got %s", f.metrics.recorded[0].Outcome)
		}
	})

	t.Run("InvalidAnswers", func(t *testing.T) {
		f := newFixture()
		answers := breakfastAnswers()
		answers.Flavor = "umami"
		_, err := f.app.Recommend(ctx, "bf", answers)
		if !errors.Is(err, recommend.ErrInvalidAnswer) {
			t.Fatalf("Expected ErrInvalidAnswer, got %v", err)
		}
	})
}

func TestPKAndRandom(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	duel, err := f.app.PK(ctx, "gf", breakfastAnswers())
	if err != nil {
		t.Fatalf("PK failed: %v", err)
	}
	if len(duel) != 2 || duel[0].Food.ID == duel[1].Food.ID {
		t.Errorf("Expected two distinct contenders, got %+v", duel)
	}

	pick, err := f.app.Random(ctx, "gf", false)
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	if pick == nil || pick.Food.Name == "" {
		t.Errorf("Expected a random pick, got %+v", pick)
	}
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsEntry", func(t *testing.T) {
		f := newFixture()
		if _, err := f.app.ConfirmByName(ctx, "bf", "包子", recommend.SlotBreakfast, history.ModeSmart, 0); err != nil {
			t.Fatalf("ConfirmByName failed: %v", err)
		}
		e := f.history.entries[0]
		if e.FoodID != 1 || e.Rating != DefaultRating || e.MealSlot != "breakfast" {
			t.Errorf("Unexpected entry: %+v", e)
		}
	})

	t.Run("UnknownFoodKeepsName", func(t *testing.T) {
		f := newFixture()
		if _, err := f.app.ConfirmByName(ctx, "bf", "妈妈做的菜", recommend.SlotDinner, history.ModeManual, 4); err != nil {
			t.Fatalf("ConfirmByName failed: %v", err)
		}
		if e := f.history.entries[0]; e.FoodID != 0 || e.FoodName != "妈妈做的菜" {
			t.Errorf("Unexpected entry: %+v", e)
		}
	})

	t.Run("ByID", func(t *testing.T) {
		f := newFixture()
		name, err := f.app.ConfirmByID(ctx, "gf", 2, recommend.SlotDinner, history.ModePK, 3)
		if err != nil {
			t.Fatalf("ConfirmByID failed: %v", err)
		}
		if name != "重庆火锅" || f.history.entries[0].Mode != history.ModePK {
			t.Errorf("Unexpected confirm: %s %+v", name, f.history.entries)
		}
		if _, err := f.app.ConfirmByID(ctx, "gf", 99, recommend.SlotDinner, history.ModePK, 3); err == nil {
			t.Error("Expected an error for an unknown food")
		}
	})

	t.Run("SurfacesWriteFailure", func(t *testing.T) {
		f := newFixture()
		f.history.err = errors.New("disk full")
		_, err := f.app.Confirm(ctx, "bf", food.Record{ID: 1, Name: "包子"}, recommend.SlotBreakfast, history.ModeSmart, 5)
		if err == nil {
			t.Fatal("Expected the write failure to be returned")
		}
	})
}

func TestCook(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.pantry.items["鸡蛋"] = 6

	res, err := f.app.Cook(ctx, "gf")
	if err != nil {
		t.Fatalf("Cook failed: %v", err)
	}
	var ready []string
	for _, m := range res.Ready {
		ready = append(ready, m.Name)
	}
	if !slices.Contains(ready, "番茄炒蛋") {
		t.Errorf("Expected 番茄炒蛋 ready, got %v", ready)
	}
	if len(res.Almost) == 0 {
		t.Error("Expected some almost-ready recipes")
	}

	missing, err := f.app.AddMissingToShopping(ctx, "gf", "西红柿鸡蛋汤")
	if err != nil {
		t.Fatalf("AddMissingToShopping failed: %v", err)
	}
	if !slices.Equal(missing, []string{"葱花"}) || !slices.Equal(f.shopping.names, []string{"葱花"}) {
		t.Errorf("Expected 葱花 on the list, got %v / %v", missing, f.shopping.names)
	}

	if _, err := f.app.AddMissingToShopping(ctx, "gf", "佛跳墙"); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("Expected ErrRecipeNotFound, got %v", err)
	}
}

func TestCookWithCustomRecipe(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	if err := f.app.SaveRecipe(ctx, "gf", pantry.Recipe{Name: "番茄炒蛋", Ingredients: []string{"番茄"}}); err != nil {
		t.Fatalf("SaveRecipe failed: %v", err)
	}
	res, err := f.app.Cook(ctx, "gf")
	if err != nil {
		t.Fatalf("Cook failed: %v", err)
	}
	if len(res.Ready) == 0 || res.Ready[0].Name != "番茄炒蛋" {
		t.Errorf("Expected the custom 番茄炒蛋 to be ready, got %+v", res.Ready)
	}
}

func TestBoughtStocksPantry(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.shopping.names = []string{"牛奶"}

	ok, err := f.app.Bought(ctx, "bf", "牛奶")
	if err != nil || !ok {
		t.Fatalf("Bought = %v, %v", ok, err)
	}
	if f.pantry.items["牛奶"] != 1 {
		t.Errorf("Expected 牛奶 in the pantry, got %v", f.pantry.items)
	}

	ok, err = f.app.Bought(ctx, "bf", "可乐")
	if err != nil || ok {
		t.Errorf("Expected unknown item not bought, got %v, %v", ok, err)
	}
}
