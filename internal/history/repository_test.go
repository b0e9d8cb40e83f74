package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"honeyeat/internal/database"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()
	repo := NewRepository(db.SQL)

	now := time.Now()
	entries := []Entry{
		{Date: now.AddDate(0, 0, -10), MealSlot: "晚餐", FoodName: "牛排", UserID: "bf", Rating: 4, Mode: ModeSmart},
		{Date: now.AddDate(0, 0, -3), MealSlot: "午餐", FoodName: "牛肉面", UserID: "bf", Rating: 5, Mode: ModeRandom},
		{Date: now, MealSlot: "早餐", FoodName: "牛肉面", UserID: "bf", Rating: 3, Mode: ModeSmart},
		{Date: now, MealSlot: "早餐", FoodName: "包子", UserID: "gf", Rating: 5, Mode: ModePK},
	}
	for _, e := range entries {
		if _, err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Failed to append entry: %v", err)
		}
	}

	t.Run("InvalidRating", func(t *testing.T) {
		_, err := repo.Append(ctx, Entry{FoodName: "包子", UserID: "bf", Rating: 6, Mode: ModeSmart})
		if !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("Expected ErrInvalidRating, got %v", err)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		if _, err := repo.Append(ctx, Entry{Rating: 3}); err == nil {
			t.Fatal("Expected a validation error, got nil")
		}
	})

	t.Run("ListSinceIncludesBoundary", func(t *testing.T) {
		got, err := repo.ListSince(ctx, "bf", now.AddDate(0, 0, -3))
		if err != nil {
			t.Fatalf("Failed to list history: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 entries within 3 days, got %d", len(got))
		}
		if got[0].FoodName != "牛肉面" || got[0].MealSlot != "早餐" {
			t.Errorf("Expected newest entry first, got %+v", got[0])
		}
	})

	t.Run("ListRecent", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, "bf", 1)
		if err != nil {
			t.Fatalf("Failed to list history: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(got))
		}
	})

	t.Run("Stats", func(t *testing.T) {
		s, err := repo.Stats(ctx, "bf")
		if err != nil {
			t.Fatalf("Failed to compute stats: %v", err)
		}
		if s.Total != 3 {
			t.Errorf("Expected 3 entries, got %d", s.Total)
		}
		if s.MostCommon != "牛肉面" || s.MostCommonN != 2 {
			t.Errorf("Expected 牛肉面 x2, got %s x%d", s.MostCommon, s.MostCommonN)
		}
		if s.AverageRating != 4 {
			t.Errorf("Expected average rating 4, got %v", s.AverageRating)
		}
		if len(s.Modes) != 2 || s.Modes[0].Mode != ModeSmart || s.Modes[0].Count != 2 {
			t.Errorf("Unexpected mode distribution: %+v", s.Modes)
		}
	})

	t.Run("StatsEmpty", func(t *testing.T) {
		s, err := repo.Stats(ctx, "nobody")
		if err != nil {
			t.Fatalf("Failed to compute stats: %v", err)
		}
		if s.Total != 0 || s.MostCommon != "" {
			t.Errorf("Expected empty stats, got %+v", s)
		}
	})
}
