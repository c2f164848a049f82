package reputation

import (
	"sync"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
)

// DecayingEffect tracks the residual influence a news article or scandal
// still exerts on one (player, slice) approval. Each decay step shrinks
// Remaining multiplicatively and the difference is applied back to the
// ledger as a turn-decay delta, so approval drifts toward its pre-event
// level. Below the configured threshold the effect is dropped with its
// final remainder reversed.
type DecayingEffect struct {
	PlayerID  string               `json:"player_id"`
	SliceID   demographics.SliceID `json:"slice_id"`
	Source    Source               `json:"source"`    // news-article or scandal
	SourceID  string               `json:"source_id"` // originating article/scandal id
	Remaining float64              `json:"remaining"` // signed residual approval influence
	Rate      float64              `json:"rate"`      // fraction removed per decay step
	Interval  int                  `json:"interval"`  // turns between decay steps
}

// DecayStep is the outcome of advancing one effect by one decay interval.
type DecayStep struct {
	Effect  DecayingEffect
	Delta   float64 // signed counter-delta to apply
	Expired bool    // effect dropped after this step
}

// DecayRegistry holds all active decaying effects, separate from the
// permanent score history.
type DecayRegistry struct {
	mu      sync.Mutex
	effects []DecayingEffect
}

// NewDecayRegistry creates an empty registry.
func NewDecayRegistry() *DecayRegistry {
	return &DecayRegistry{}
}

// Track registers a new decaying effect.
func (r *DecayRegistry) Track(e DecayingEffect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
}

// Active returns a copy of the currently tracked effects.
func (r *DecayRegistry) Active() []DecayingEffect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DecayingEffect, len(r.effects))
	copy(out, r.effects)
	return out
}

// Len returns the number of active effects.
func (r *DecayRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.effects)
}

// Advance computes the decay steps due at the given turn and updates the
// registry. Effects whose interval does not divide the turn are skipped.
// Residuals that fall below threshold are fully reversed and removed.
func (r *DecayRegistry) Advance(turn int, threshold float64) []DecayStep {
	r.mu.Lock()
	defer r.mu.Unlock()

	var steps []DecayStep
	var kept []DecayingEffect
	for _, e := range r.effects {
		interval := e.Interval
		if interval < 1 {
			interval = 1
		}
		if turn%interval != 0 {
			kept = append(kept, e)
			continue
		}

		next := e.Remaining * (1 - e.Rate)
		if next < threshold && next > -threshold {
			// Reverse whatever is left and drop the effect.
			steps = append(steps, DecayStep{Effect: e, Delta: -e.Remaining, Expired: true})
			continue
		}

		steps = append(steps, DecayStep{Effect: e, Delta: next - e.Remaining})
		e.Remaining = next
		kept = append(kept, e)
	}
	r.effects = kept
	return steps
}

// Restore reloads persisted effects when resuming a session.
func (r *DecayRegistry) Restore(effects []DecayingEffect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects[:0], effects...)
}
