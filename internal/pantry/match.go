// Package pantry matches the ingredients a user owns against a recipe book and
// stores the pantry and the user's own recipes.
package pantry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyRecipe is returned for a recipe that requires no ingredients.
var ErrEmptyRecipe = errors.New("recipe has no ingredients")

// Match is one recipe that shares at least one ingredient with the pantry.
type Match struct {
	Name    string   `json:"name"`
	Ratio   float64  `json:"match_ratio"`
	Have    []string `json:"have"`
	Missing []string `json:"missing"`
}

// Ready reports whether every required ingredient is owned.
func (m Match) Ready() bool {
	return len(m.Missing) == 0
}

// MatchRecipes scores every recipe in book by the share of its ingredients
// found in owned. Recipes with no owned ingredient are left out. The result is
// sorted by ratio, descending; equal ratios keep book order.
func MatchRecipes(owned []string, book []Recipe) ([]Match, error) {
	have := make(map[string]bool, len(owned))
	for _, o := range owned {
		have[o] = true
	}

	matches := []Match{}
	for _, r := range book {
		required := dedupe(r.Ingredients)
		if len(required) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRecipe, r.Name)
		}
		if len(have) == 0 {
			continue
		}

		m := Match{Name: r.Name, Have: []string{}, Missing: []string{}}
		for _, ing := range required {
			if have[ing] {
				m.Have = append(m.Have, ing)
			} else {
				m.Missing = append(m.Missing, ing)
			}
		}
		if len(m.Have) == 0 {
			continue
		}
		m.Ratio = float64(len(m.Have)) / float64(len(required))
		matches = append(matches, m)
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Ratio, a.Ratio)
	})
	return matches, nil
}

// Partition splits matches into recipes that can be cooked now and recipes
// that are missing something.
func Partition(matches []Match) (ready, almost []Match) {
	for _, m := range matches {
		if m.Ready() {
			ready = append(ready, m)
		} else {
			almost = append(almost, m)
		}
	}
	return ready, almost
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
