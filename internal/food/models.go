package food

import (
	"errors"
	"time"
)

// ErrDuplicateName is returned when a food with the same name already exists.
var ErrDuplicateName = errors.New("food name already exists")

// Category is the catalog grouping of a dish. The set is open; the constants
// below are the categories the recommendation rules know about.
type Category string

const (
	CategoryBreakfast     Category = "早餐"
	CategoryQuickMeal     Category = "速食"
	CategoryLightMeal     Category = "轻食"
	CategoryBigMeal       Category = "大餐"
	CategoryHotpot        Category = "火锅"
	CategoryBBQ           Category = "烧烤"
	CategoryChineseFormal Category = "中式正餐"
	CategoryChinese       Category = "中餐"
	CategoryHomeStyle     Category = "家常菜"
	CategoryFastFood      Category = "快餐"
	CategoryDessert       Category = "甜品"
	CategorySnack         Category = "零食饮料"
	CategoryWestern       Category = "西餐"
	CategoryJapanese      Category = "日料"
)

// CostTier is an ordinal price level.
type CostTier string

const (
	CostLow    CostTier = "$"
	CostMedium CostTier = "$$"
	CostHigh   CostTier = "$$$"
)

// Valid reports whether c is one of the three tiers.
func (c CostTier) Valid() bool {
	return c == CostLow || c == CostMedium || c == CostHigh
}

// HealthTag is an optional label; the empty tag means "untagged".
type HealthTag string

const (
	TagNone      HealthTag = ""
	TagHealthy   HealthTag = "Healthy"
	TagSpicy     HealthTag = "Spicy"
	TagCheatMeal HealthTag = "CheatMeal"
	TagSweet     HealthTag = "Sweet"
	TagLight     HealthTag = "Light"
	TagNormal    HealthTag = "Normal"
)

// Valid reports whether t is empty or a known tag.
func (t HealthTag) Valid() bool {
	switch t {
	case TagNone, TagHealthy, TagSpicy, TagCheatMeal, TagSweet, TagLight, TagNormal:
		return true
	}
	return false
}

// Record is a single dish in the catalog.
type Record struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Category   Category  `json:"category"`
	Cost       CostTier  `json:"cost_level"`
	Tag        HealthTag `json:"health_tag,omitempty"`
	Active     bool      `json:"active"`
	RecipeLink string    `json:"recipe_link,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
