package events

import (
	"fmt"
	"math"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// ScandalImpact is a scandal's hit against one slice.
type ScandalImpact struct {
	SliceID demographics.SliceID
	Delta   float64 // usually negative
}

// ScandalEvent damages one player's standing with the listed slices. The
// damage decays back toward zero on the configured interval until the
// residual drops below threshold.
type ScandalEvent struct {
	ScandalID string
	PlayerID  string
	Title     string
	Impacts   []ScandalImpact
}

// ApplyScandal applies a scandal's deltas and registers them for decay.
func ApplyScandal(led *reputation.Ledger, cat *demographics.Catalog, reg *reputation.DecayRegistry, cfg tuning.Config, turn int, ev ScandalEvent) ([]reputation.ReputationChange, error) {
	if ev.ScandalID == "" || ev.PlayerID == "" {
		return nil, fmt.Errorf("scandal: missing scandal or player id: %w", reputation.ErrNotFound)
	}

	deltas := make([]reputation.Delta, 0, len(ev.Impacts))
	for _, im := range ev.Impacts {
		if _, ok := cat.Get(im.SliceID); !ok {
			return nil, fmt.Errorf("scandal %s: slice %s: %w", ev.ScandalID, im.SliceID, reputation.ErrNotFound)
		}
		if math.IsNaN(im.Delta) || math.IsInf(im.Delta, 0) {
			return nil, fmt.Errorf("scandal %s: non-finite delta: %w", ev.ScandalID, reputation.ErrInvalidRange)
		}
		deltas = append(deltas, reputation.Delta{
			PlayerID:    ev.PlayerID,
			SliceID:     im.SliceID,
			Delta:       im.Delta,
			Source:      reputation.SourceScandal,
			SourceID:    ev.ScandalID,
			Reason:      fmt.Sprintf("scandal %q", scandalTitle(ev)),
			Calculation: politics.Calculation{Score: im.Delta},
		})
	}

	changes, err := led.ApplyBatch(turn, deltas)
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		if c.Delta == 0 {
			continue
		}
		reg.Track(reputation.DecayingEffect{
			PlayerID:  c.PlayerID,
			SliceID:   c.SliceID,
			Source:    reputation.SourceScandal,
			SourceID:  ev.ScandalID,
			Remaining: c.Delta,
			Rate:      cfg.ScandalDecayRate,
			Interval:  cfg.ScandalDecayInterval,
		})
	}
	return changes, nil
}

func scandalTitle(ev ScandalEvent) string {
	if ev.Title != "" {
		return ev.Title
	}
	return ev.ScandalID
}

// ApplyDecay advances the decaying-effect registry one turn and applies
// the resulting counter-deltas as turn-decay changes. Called exactly once
// per turn by the engine.
func ApplyDecay(led *reputation.Ledger, reg *reputation.DecayRegistry, cfg tuning.Config, turn int) ([]reputation.ReputationChange, error) {
	steps := reg.Advance(turn, cfg.DecayThreshold)
	if len(steps) == 0 {
		return nil, nil
	}

	deltas := make([]reputation.Delta, 0, len(steps))
	for _, st := range steps {
		reason := fmt.Sprintf("decay of %s %s", st.Effect.Source, st.Effect.SourceID)
		if st.Expired {
			reason = fmt.Sprintf("%s expired", st.Effect.SourceID)
		}
		deltas = append(deltas, reputation.Delta{
			PlayerID:    st.Effect.PlayerID,
			SliceID:     st.Effect.SliceID,
			Delta:       st.Delta,
			Source:      reputation.SourceTurnDecay,
			SourceID:    fmt.Sprintf("%s:%s:turn-%d", st.Effect.Source, st.Effect.SourceID, turn),
			Reason:      reason,
			Calculation: politics.Calculation{Score: st.Delta},
		})
	}
	return led.ApplyBatch(turn, deltas)
}
