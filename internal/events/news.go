package events

import (
	"fmt"
	"math"
	"sort"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// NewsMaxDelta bounds a single article's impact on one pair.
const NewsMaxDelta = 5.0

// NewsImpact is one article's effect on one (slice, player) pair. The
// magnitude comes from content/tone heuristics outside the engine.
type NewsImpact struct {
	PlayerID string
	SliceID  demographics.SliceID
	Delta    float64 // [-5, 5]
}

// NewsEvent is a published article with its pre-computed impacts.
type NewsEvent struct {
	ArticleID string
	Headline  string
	Impacts   []NewsImpact
}

// ApplyNews applies an article's deltas and registers each one as a
// decaying effect: the residual influence shrinks by the configured rate
// every turn until it falls below threshold and is dropped.
func ApplyNews(led *reputation.Ledger, cat *demographics.Catalog, reg *reputation.DecayRegistry, cfg tuning.Config, turn int, ev NewsEvent) ([]reputation.ReputationChange, error) {
	if ev.ArticleID == "" {
		return nil, fmt.Errorf("news: missing article id: %w", reputation.ErrNotFound)
	}
	if len(ev.Impacts) == 0 {
		return nil, nil
	}

	deltas := make([]reputation.Delta, 0, len(ev.Impacts))
	for _, im := range ev.Impacts {
		if _, ok := cat.Get(im.SliceID); !ok {
			return nil, fmt.Errorf("news %s: slice %s: %w", ev.ArticleID, im.SliceID, reputation.ErrNotFound)
		}
		if im.PlayerID == "" {
			return nil, fmt.Errorf("news %s: empty player id: %w", ev.ArticleID, reputation.ErrNotFound)
		}
		if math.IsNaN(im.Delta) || im.Delta < -NewsMaxDelta || im.Delta > NewsMaxDelta {
			return nil, fmt.Errorf("news %s: delta %.2f outside [%g, %g]: %w",
				ev.ArticleID, im.Delta, -NewsMaxDelta, NewsMaxDelta, reputation.ErrInvalidRange)
		}
		deltas = append(deltas, reputation.Delta{
			PlayerID:    im.PlayerID,
			SliceID:     im.SliceID,
			Delta:       im.Delta,
			Source:      reputation.SourceNewsArticle,
			SourceID:    ev.ArticleID,
			Reason:      fmt.Sprintf("news article %q", headline(ev)),
			Calculation: politics.Calculation{Score: im.Delta},
		})
	}

	changes, err := led.ApplyBatch(turn, deltas)
	if err != nil {
		return nil, err
	}

	// Track residuals using the post-clamp deltas actually applied.
	for _, c := range changes {
		if c.Delta == 0 {
			continue
		}
		reg.Track(reputation.DecayingEffect{
			PlayerID:  c.PlayerID,
			SliceID:   c.SliceID,
			Source:    reputation.SourceNewsArticle,
			SourceID:  ev.ArticleID,
			Remaining: c.Delta,
			Rate:      cfg.NewsDecayRate,
			Interval:  1,
		})
	}
	return changes, nil
}

func headline(ev NewsEvent) string {
	if ev.Headline != "" {
		return ev.Headline
	}
	return ev.ArticleID
}

func sortedImpactKeys(m map[demographics.SliceID]float64) []demographics.SliceID {
	keys := make([]demographics.SliceID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
