// Package preference holds the per-user settings read on every recommendation.
package preference

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"honeyeat/internal/food"
)

var (
	// ErrUnknownField is returned when a stored or submitted preference blob
	// carries a field this version does not recognize.
	ErrUnknownField = errors.New("unknown preference field")
	// ErrUserNotFound is returned when saving preferences for a missing user.
	ErrUserNotFound = errors.New("user not found")
)

// HealthMode biases scoring toward or away from healthy food.
type HealthMode string

const (
	HealthModeNormal    HealthMode = "Normal"
	HealthModeHealthy   HealthMode = "Healthy"
	HealthModeIndulgent HealthMode = "Indulgent"
)

// DefaultCalorieGoal is the daily goal assumed when none is set.
const DefaultCalorieGoal = 2000

// Preferences enumerates every recognized preference field.
type Preferences struct {
	// Spicy is true when the user likes spicy food. Defaults to true so
	// spicy dishes are only penalized for users who opted out.
	Spicy              bool            `json:"spicy"`
	Sweet              bool            `json:"sweet"`
	Vegetarian         bool            `json:"vegetarian"`
	FavoriteCategories []food.Category `json:"favorite_categories"`
	AvoidCategories    []food.Category `json:"avoid_categories"`
	Blacklist          []string        `json:"blacklist"`
	HealthMode         HealthMode      `json:"health_mode" validate:"oneof=Normal Healthy Indulgent"`
	CalorieGoal        int             `json:"calorie_goal" validate:"gt=0,lte=10000"`
	Role               string          `json:"role,omitempty" validate:"omitempty,oneof=admin"`
}

var validate = validator.New()

// Default returns the preferences of a user who never saved any.
func Default() Preferences {
	return Preferences{
		Spicy:       true,
		HealthMode:  HealthModeNormal,
		CalorieGoal: DefaultCalorieGoal,
	}
}

// Decode parses a preference blob on top of the defaults. Fields missing from
// the blob keep their default; unknown fields are rejected.
func Decode(data []byte) (Preferences, error) {
	p := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return Preferences{}, fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return Preferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Encode serializes p after validating it.
func (p Preferences) Encode() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// Validate checks enum and range constraints.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether name is on the blacklist (exact match).
func (p Preferences) IsBlacklisted(name string) bool {
	return slices.Contains(p.Blacklist, name)
}

// Avoids reports whether c is an avoided category.
func (p Preferences) Avoids(c food.Category) bool {
	return slices.Contains(p.AvoidCategories, c)
}

// IsFavorite reports whether c is a favorite category that is not also avoided.
func (p Preferences) IsFavorite(c food.Category) bool {
	return slices.Contains(p.FavoriteCategories, c) && !p.Avoids(c)
}

// IsAdmin reports whether the user carries the admin role.
func (p Preferences) IsAdmin() bool {
	return p.Role == "admin"
}

// Ban adds name to the blacklist. It reports whether the list changed.
func (p *Preferences) Ban(name string) bool {
	if name == "" || p.IsBlacklisted(name) {
		return false
	}
	p.Blacklist = append(p.Blacklist, name)
	return true
}

// Unban removes name from the blacklist. It reports whether the list changed.
func (p *Preferences) Unban(name string) bool {
	n := len(p.Blacklist)
	p.Blacklist = slices.DeleteFunc(p.Blacklist, func(s string) bool { return s == name })
	return len(p.Blacklist) != n
}

// Favor marks c as a favorite and stops avoiding it.
func (p *Preferences) Favor(c food.Category) bool {
	n := len(p.AvoidCategories)
	p.AvoidCategories = slices.DeleteFunc(p.AvoidCategories, func(x food.Category) bool { return x == c })
	changed := len(p.AvoidCategories) != n
	if !slices.Contains(p.FavoriteCategories, c) {
		p.FavoriteCategories = append(p.FavoriteCategories, c)
		changed = true
	}
	return changed
}

// Avoid marks c as avoided and drops it from the favorites.
func (p *Preferences) Avoid(c food.Category) bool {
	n := len(p.FavoriteCategories)
	p.FavoriteCategories = slices.DeleteFunc(p.FavoriteCategories, func(x food.Category) bool { return x == c })
	changed := len(p.FavoriteCategories) != n
	if !p.Avoids(c) {
		p.AvoidCategories = append(p.AvoidCategories, c)
		changed = true
	}
	return changed
}

// ParseHealthMode accepts a mode value or its Chinese label.
func ParseHealthMode(s string) (HealthMode, error) {
	switch strings.TrimSpace(s) {
	case string(HealthModeNormal), "普通", "正常":
		return HealthModeNormal, nil
	case string(HealthModeHealthy), "健康":
		return HealthModeHealthy, nil
	case string(HealthModeIndulgent), "放纵":
		return HealthModeIndulgent, nil
	}
	return "", fmt.Errorf("unknown health mode %q", s)
}
