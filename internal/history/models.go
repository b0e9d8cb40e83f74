package history

import (
	"errors"
	"time"
)

// ErrInvalidRating is returned for ratings outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Selection modes recorded with each entry.
const (
	ModeSmart    = "smart"
	ModeRandom   = "random"
	ModePK       = "pk"
	ModeManual   = "manual"
	ModeCategory = "category"
)

// Entry is one consumption event. Entries are append-only.
type Entry struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	MealSlot  string    `json:"meal_time"`
	FoodID    int64     `json:"food_id,omitempty"`
	FoodName  string    `json:"food_name" validate:"required"`
	UserID    string    `json:"user_id" validate:"required"`
	Rating    int       `json:"rating"`
	Mode      string    `json:"mode" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// ModeCount is the number of entries recorded with one selection mode.
type ModeCount struct {
	Mode  string
	Count int
}

// Stats summarizes a user's history.
type Stats struct {
	Total         int
	MostCommon    string
	MostCommonN   int
	AverageRating float64
	Modes         []ModeCount
}
