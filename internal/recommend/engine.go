// Package recommend turns a questionnaire, the user's preferences and the food
// catalog into a ranked list of dishes and draws one of the best.
//
// The engine does no I/O: callers hand it a snapshot of catalog, preferences
// and history. An Engine is safe for concurrent use as long as its Source is.
package recommend

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"time"

	"honeyeat/internal/food"
	"honeyeat/internal/history"
	"honeyeat/internal/preference"
)

const (
	// BaseScore is the starting score of every eligible dish.
	BaseScore = 50
	// TopN is the size of the set the final draw is made from.
	TopN = 5
	// RecentDays is the trailing window, in calendar days, of the
	// exclude-recently-eaten filter. A meal exactly RecentDays ago is inside it.
	RecentDays = 3
	// FallbackReason is used when no rule fired for the chosen dish.
	FallbackReason = "今天就吃点喜欢的吧"
)

// Source supplies uniform floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// ScoredCandidate is a dish with its total score and the reasons that raised it.
type ScoredCandidate struct {
	Food    food.Record `json:"food"`
	Score   int         `json:"score"`
	Reasons []string    `json:"reasons,omitempty"`
}

// Request is the snapshot a recommendation is computed from.
type Request struct {
	UserID      string
	Answers     Answers
	Preferences preference.Preferences
	Catalog     []food.Record
	History     []history.Entry
	// Now anchors the recently-eaten window. Zero means time.Now().
	Now time.Time
}

// Result is a successful recommendation.
type Result struct {
	Choice ScoredCandidate   `json:"choice"`
	Reason string            `json:"reason"`
	Top    []ScoredCandidate `json:"top"`
}

// Engine scores and selects dishes.
type Engine struct {
	rules  []Rule
	source Source
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource replaces the random source used by the final draw.
func WithSource(s Source) Option {
	return func(e *Engine) { e.source = s }
}

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// NewEngine creates an Engine with DefaultRules and the global random source.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules, source: globalSource{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend validates the answers, filters and scores the catalog, and draws
// one dish from the top TopN weighted by score. A nil Result with a nil error
// means no dish survived the filters.
func (e *Engine) Recommend(req Request) (*Result, error) {
	top, err := e.rankTop(req)
	if err != nil || len(top) == 0 {
		return nil, err
	}

	choice := top[pickWeighted(top, e.source.Float64())]
	return &Result{
		Choice: choice,
		Reason: ReasonText(choice.Reasons),
		Top:    top,
	}, nil
}

// Rank returns every eligible dish scored and sorted by descending score.
// Equal scores keep catalog order. The ranking is deterministic.
func (e *Engine) Rank(req Request) ([]ScoredCandidate, error) {
	if err := req.Answers.Validate(); err != nil {
		return nil, err
	}
	eligible := Eligible(req)
	if len(eligible) == 0 {
		return nil, nil
	}
	scored := e.Score(Input{Answers: req.Answers, Preferences: req.Preferences}, eligible)
	slices.SortStableFunc(scored, func(a, b ScoredCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scored, nil
}

// PK draws two different dishes from the top TopN for a head-to-head pick.
// Fewer than two eligible dishes yields a shorter slice; none yields nil.
func (e *Engine) PK(req Request) ([]ScoredCandidate, error) {
	top, err := e.rankTop(req)
	if err != nil || len(top) == 0 {
		return nil, err
	}

	first := pickWeighted(top, e.source.Float64())
	duel := []ScoredCandidate{top[first]}
	if len(top) == 1 {
		return duel, nil
	}
	rest := slices.Delete(slices.Clone(top), first, first+1)
	duel = append(duel, rest[pickWeighted(rest, e.source.Float64())])
	return duel, nil
}

// Random picks uniformly among eligible dishes, ignoring scores. Only the
// ExcludeRecent answer is consulted, so the other answers may be empty.
func (e *Engine) Random(req Request) *ScoredCandidate {
	eligible := Eligible(req)
	if len(eligible) == 0 {
		return nil
	}
	i := int(e.source.Float64() * float64(len(eligible)))
	if i >= len(eligible) {
		i = len(eligible) - 1
	}
	return &ScoredCandidate{Food: eligible[i], Score: BaseScore}
}

func (e *Engine) rankTop(req Request) ([]ScoredCandidate, error) {
	ranked, err := e.Rank(req)
	if err != nil {
		return nil, err
	}
	return ranked[:min(TopN, len(ranked))], nil
}

// Score applies every rule to every dish. Reasons are deduplicated keeping
// the order in which rules first fired.
func (e *Engine) Score(in Input, foods []food.Record) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(foods))
	for _, f := range foods {
		c := ScoredCandidate{Food: f, Score: BaseScore}
		for _, r := range e.rules {
			if !r.Applies(in, f) {
				continue
			}
			c.Score += r.Delta
			if r.Reason != "" && !slices.Contains(c.Reasons, r.Reason) {
				c.Reasons = append(c.Reasons, r.Reason)
			}
		}
		scored = append(scored, c)
	}
	return scored
}

// Eligible keeps active dishes that are not blacklisted, not in an avoided
// category and, when requested, not eaten by the user within RecentDays.
func Eligible(req Request) []food.Record {
	var recentIDs map[int64]bool
	var recentNames map[string]bool
	if req.Answers.ExcludeRecent {
		recentIDs, recentNames = recentlyEaten(req)
	}

	var out []food.Record
	for _, f := range req.Catalog {
		switch {
		case !f.Active:
		case recentIDs[f.ID] || recentNames[f.Name]:
		case req.Preferences.IsBlacklisted(f.Name):
		case req.Preferences.Avoids(f.Category):
		default:
			out = append(out, f)
		}
	}
	return out
}

func recentlyEaten(req Request) (map[int64]bool, map[string]bool) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := startOfDay(now).AddDate(0, 0, -RecentDays)

	ids := make(map[int64]bool)
	names := make(map[string]bool)
	for _, h := range req.History {
		if req.UserID != "" && h.UserID != req.UserID {
			continue
		}
		if startOfDay(h.Date.In(now.Location())).Before(cutoff) {
			continue
		}
		if h.FoodID != 0 {
			ids[h.FoodID] = true
		} else {
			names[h.FoodName] = true
		}
	}
	return ids, names
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weight floors scores at 1 so negative or zero scores can still be drawn
// when they made the top set. Sorting always uses the true score.
func weight(score int) int {
	return max(score, 1)
}

// pickWeighted performs a cumulative-weight draw with r in [0, 1).
func pickWeighted(cands []ScoredCandidate, r float64) int {
	total := 0
	for _, c := range cands {
		total += weight(c.Score)
	}
	target := r * float64(total)
	acc := 0.0
	for i, c := range cands {
		acc += float64(weight(c.Score))
		if target < acc {
			return i
		}
	}
	return len(cands) - 1
}

// ReasonText joins the first reason with at most one more distinct reason.
// The favorite-category reason is never used as the second half.
func ReasonText(reasons []string) string {
	if len(reasons) == 0 {
		return FallbackReason
	}
	primary := reasons[0]
	for _, r := range reasons[1:] {
		if r != primary && r != ReasonFavorite {
			return primary + "，而且" + r
		}
	}
	return primary
}
