package food

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"honeyeat/internal/database"
)

func newTestRepo(t *testing.T) (*Repository, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "food.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL), db
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepo(t)

	var id int64

	t.Run("Create", func(t *testing.T) {
		var err error
		id, err = repo.Create(ctx, Record{Name: "煎饼果子", Category: CategoryBreakfast, Cost: CostLow, Active: true})
		if err != nil {
			t.Fatalf("Failed to create food: %v", err)
		}
		got, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get food: %v", err)
		}
		if got == nil || got.Name != "煎饼果子" || got.Category != CategoryBreakfast || !got.Active {
			t.Errorf("Unexpected food: %+v", got)
		}
		if got.Tag != TagNone {
			t.Errorf("Expected untagged food, got %q", got.Tag)
		}
	})

	t.Run("CreateDuplicateName", func(t *testing.T) {
		_, err := repo.Create(ctx, Record{Name: "煎饼果子", Category: CategorySnack, Cost: CostLow, Active: true})
		if !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("Expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("CreateInvalidTag", func(t *testing.T) {
		_, err := repo.Create(ctx, Record{Name: "怪味豆", Category: CategorySnack, Cost: CostLow, Tag: "Weird"})
		if err == nil {
			t.Fatal("Expected an error for an unknown health tag, got nil")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, 99999)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing food, got %+v", got)
		}
	})

	t.Run("SetActive", func(t *testing.T) {
		if err := repo.SetActive(ctx, id, false); err != nil {
			t.Fatalf("Failed to disable food: %v", err)
		}
		active, err := repo.ListActive(ctx, time.Time{}, "")
		if err != nil {
			t.Fatalf("Failed to list active foods: %v", err)
		}
		for _, rec := range active {
			if rec.ID == id {
				t.Errorf("Disabled food %d still listed as active", id)
			}
		}
	})

	t.Run("ListActiveExcludesRecentlyEaten", func(t *testing.T) {
		baozi, err := repo.GetByName(ctx, "包子")
		if err != nil || baozi == nil {
			t.Fatalf("Expected seeded food 包子, got %v (err %v)", baozi, err)
		}
		today := time.Now()
		_, err = db.SQL.Exec(
			`INSERT INTO eat_history (date, meal_time, food_id, food_name, user_id, rating, mode, created_at)
			 VALUES (?, '早餐', ?, '包子', 'bf', 5, 'smart', ?)`,
			today.Format(database.DateLayout), baozi.ID, today.UTC().Format(database.TimestampLayout),
		)
		if err != nil {
			t.Fatalf("Failed to insert history: %v", err)
		}

		since := today.AddDate(0, 0, -3)
		forBF, err := repo.ListActive(ctx, since, "bf")
		if err != nil {
			t.Fatalf("Failed to list active foods: %v", err)
		}
		for _, rec := range forBF {
			if rec.ID == baozi.ID {
				t.Error("Expected 包子 to be excluded for bf")
			}
		}

		forGF, err := repo.ListActive(ctx, since, "gf")
		if err != nil {
			t.Fatalf("Failed to list active foods: %v", err)
		}
		found := false
		for _, rec := range forGF {
			if rec.ID == baozi.ID {
				found = true
			}
		}
		if !found {
			t.Error("Expected 包子 to remain available for gf")
		}
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		rec, err := repo.Get(ctx, id)
		if err != nil || rec == nil {
			t.Fatalf("Failed to get food: %v", err)
		}
		rec.Tag = TagHealthy
		rec.Active = true
		if err := repo.Update(ctx, *rec); err != nil {
			t.Fatalf("Failed to update food: %v", err)
		}
		got, _ := repo.Get(ctx, id)
		if got.Tag != TagHealthy {
			t.Errorf("Expected tag Healthy, got %q", got.Tag)
		}

		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("Failed to delete food: %v", err)
		}
		got, _ = repo.Get(ctx, id)
		if got != nil {
			t.Errorf("Expected food to be deleted, got %+v", got)
		}
	})

	t.Run("Categories", func(t *testing.T) {
		cats, err := repo.Categories(ctx)
		if err != nil {
			t.Fatalf("Failed to list categories: %v", err)
		}
		if len(cats) == 0 {
			t.Error("Expected seeded categories")
		}
	})
}
