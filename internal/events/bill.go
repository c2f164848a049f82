// Package events translates discrete game events — bill votes, news,
// campaigns, endorsements, scandals — into reputation deltas. Every
// translator validates all of its inputs before the first ledger write, so
// a failed event never partially mutates state.
package events

import (
	"fmt"
	"math"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// BillEvent is a bill proposal with its vote roster. The proposer and every
// voter gain or lose approval with each affected slice in proportion to how
// well the policy aligns with the slice's baseline position, scaled by
// their role weight.
type BillEvent struct {
	BillID     string
	Title      string
	ProposerID string

	YesVoters     []string
	NoVoters      []string
	AbstainVoters []string

	// Position is the policy's political fingerprint. When nil the bill
	// affects only the slices named in ImpactMap — no comparator fallback.
	Position  *politics.PoliticalPosition
	ImpactMap map[demographics.SliceID]float64 // author-supplied impact in [-1,1]

	// AffectedSlices restricts a positioned bill's reach. Empty = all
	// slices in the catalog.
	AffectedSlices []demographics.SliceID
}

type billActor struct {
	playerID string
	weight   float64
	source   reputation.Source
}

// ApplyBill applies a bill's proposal-and-vote deltas. All-or-nothing: any
// unknown slice or out-of-range impact fails before the ledger is touched.
func ApplyBill(led *reputation.Ledger, cat *demographics.Catalog, cfg tuning.Config, turn int, ev BillEvent) ([]reputation.ReputationChange, error) {
	if ev.BillID == "" || ev.ProposerID == "" {
		return nil, fmt.Errorf("bill: missing bill or proposer id: %w", reputation.ErrNotFound)
	}

	actors := []billActor{{ev.ProposerID, cfg.ProposerWeight, reputation.SourceBillProposal}}
	for _, p := range ev.YesVoters {
		actors = append(actors, billActor{p, cfg.YesVoteWeight, reputation.SourceBillVoteYes})
	}
	for _, p := range ev.NoVoters {
		actors = append(actors, billActor{p, cfg.NoVoteWeight, reputation.SourceBillVoteNo})
	}
	for _, p := range ev.AbstainVoters {
		actors = append(actors, billActor{p, cfg.AbstainWeight, reputation.SourceBillVoteAbstain})
	}
	for _, a := range actors {
		if a.playerID == "" {
			return nil, fmt.Errorf("bill %s: empty player id in roster: %w", ev.BillID, reputation.ErrNotFound)
		}
	}

	deltas, err := billDeltas(cat, cfg, ev, actors, ev.BillID)
	if err != nil {
		return nil, err
	}
	return led.ApplyBatch(turn, deltas)
}

// ApplyBillOutcome applies the enactment effect of a bill that passed (or
// was defeated): a second proposer-weighted delta against every affected
// slice, negated when the bill failed.
func ApplyBillOutcome(led *reputation.Ledger, cat *demographics.Catalog, cfg tuning.Config, turn int, ev BillEvent, passed bool) ([]reputation.ReputationChange, error) {
	if ev.BillID == "" || ev.ProposerID == "" {
		return nil, fmt.Errorf("bill outcome: missing bill or proposer id: %w", reputation.ErrNotFound)
	}

	weight := cfg.ProposerWeight
	if !passed {
		weight = -weight
	}
	actors := []billActor{{ev.ProposerID, weight, reputation.SourceBillOutcome}}

	deltas, err := billDeltas(cat, cfg, ev, actors, ev.BillID+":outcome")
	if err != nil {
		return nil, err
	}
	return led.ApplyBatch(turn, deltas)
}

func billDeltas(cat *demographics.Catalog, cfg tuning.Config, ev BillEvent, actors []billActor, sourceID string) ([]reputation.Delta, error) {
	type target struct {
		slice *demographics.DemographicSlice
		score float64
		calc  politics.Calculation
	}
	var targets []target

	if ev.Position != nil {
		if err := ev.Position.Validate(); err != nil {
			return nil, fmt.Errorf("bill %s: %w: %w", ev.BillID, reputation.ErrInvalidRange, err)
		}

		ids := ev.AffectedSlices
		if len(ids) == 0 {
			ids = cat.IDs()
		}
		for _, id := range ids {
			s, ok := cat.Get(id)
			if !ok {
				return nil, fmt.Errorf("bill %s: slice %s: %w", ev.BillID, id, reputation.ErrNotFound)
			}
			score, calc := politics.AlignmentScore(*ev.Position, s.DefaultPosition)
			targets = append(targets, target{s, score, calc})
		}
	} else {
		if len(ev.ImpactMap) == 0 {
			return nil, fmt.Errorf("bill %s has neither position nor impact map: %w", ev.BillID, reputation.ErrInvalidRange)
		}
		for _, id := range sortedImpactKeys(ev.ImpactMap) {
			impact := ev.ImpactMap[id]
			s, ok := cat.Get(id)
			if !ok {
				return nil, fmt.Errorf("bill %s: impact slice %s: %w", ev.BillID, id, reputation.ErrNotFound)
			}
			if math.IsNaN(impact) || impact < -1 || impact > 1 {
				return nil, fmt.Errorf("bill %s: impact %.2f for slice %s outside [-1,1]: %w", ev.BillID, impact, id, reputation.ErrInvalidRange)
			}
			targets = append(targets, target{s, impact, politics.Calculation{Score: impact}})
		}
	}

	var deltas []reputation.Delta
	for _, a := range actors {
		for _, t := range targets {
			deltas = append(deltas, reputation.Delta{
				PlayerID:    a.playerID,
				SliceID:     t.slice.ID,
				Delta:       t.score * a.weight * cfg.MagnitudeScalar,
				Source:      a.source,
				SourceID:    sourceID,
				Reason:      fmt.Sprintf("%s on %q", a.source, billTitle(ev)),
				Calculation: t.calc,
			})
		}
	}
	return deltas, nil
}

func billTitle(ev BillEvent) string {
	if ev.Title != "" {
		return ev.Title
	}
	return ev.BillID
}
