package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"honeyeat/internal/food"
	"honeyeat/internal/logging"
	"honeyeat/internal/preference"
)

// Preferences returns the stored preferences of userID, or the defaults.
func (a *App) Preferences(ctx context.Context, userID string) (preference.Preferences, error) {
	return a.stores.Preferences.Get(ctx, userID)
}

// SavePreferences validates prefs and replaces the stored preferences of
// userID wholesale. Users configured only through the bot are registered on
// their first save.
func (a *App) SavePreferences(ctx context.Context, userID string, prefs preference.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := a.stores.Preferences.CreateUser(ctx, userID, userID); err != nil {
		return err
	}
	if err := a.stores.Preferences.Save(ctx, userID, prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	logging.Info().Str("user", userID).Msg("preferences saved")
	return nil
}

// UpdatePreferences loads the preferences of userID, applies change and saves
// the result. Nothing is written when change reports no difference.
func (a *App) UpdatePreferences(ctx context.Context, userID string, change func(p *preference.Preferences) bool) (preference.Preferences, error) {
	prefs, err := a.stores.Preferences.Get(ctx, userID)
	if err != nil {
		return preference.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	if !change(&prefs) {
		return prefs, nil
	}
	if err := a.SavePreferences(ctx, userID, prefs); err != nil {
		return preference.Preferences{}, err
	}
	return prefs, nil
}

// LikeFood favors the category of the referenced dish and takes the dish off
// the blacklist. ref is a catalog ID or an exact name.
func (a *App) LikeFood(ctx context.Context, userID, ref string) (*food.Record, error) {
	rec, err := a.resolveFood(ctx, ref)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrFoodNotFound, ref)
	}
	_, err = a.UpdatePreferences(ctx, userID, func(p *preference.Preferences) bool {
		unbanned := p.Unban(rec.Name)
		return p.Favor(rec.Category) || unbanned
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DislikeFood blacklists the referenced dish and returns its name. Names
// outside the catalog are blacklisted as given.
func (a *App) DislikeFood(ctx context.Context, userID, ref string) (string, error) {
	rec, err := a.resolveFood(ctx, ref)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(ref)
	if rec != nil {
		name = rec.Name
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrFoodNotFound)
	}
	if _, err := a.UpdatePreferences(ctx, userID, func(p *preference.Preferences) bool { return p.Ban(name) }); err != nil {
		return "", err
	}
	return name, nil
}

// resolveFood looks ref up as an ID first, then as a name. A miss returns nil.
func (a *App) resolveFood(ctx context.Context, ref string) (*food.Record, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return a.stores.Foods.Get(ctx, id)
	}
	return a.stores.Foods.GetByName(ctx, ref)
}
