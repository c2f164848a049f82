package election

import (
	"fmt"
	"sort"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
)

// ComputeElectionResult tallies every in-scope slice over a consistent
// ledger snapshot taken at voting close. Voting must already be closed —
// aggregating an open election is an invariant violation. Winner is the
// plurality candidate; ties break by candidate ID ascending.
func ComputeElectionResult(e *Election, cat *demographics.Catalog, snap reputation.ApprovalSnapshot, baseTurnout float64) (*Result, error) {
	if e.VotingOpen {
		return nil, fmt.Errorf("election %s: voting still open: %w", e.ID, reputation.ErrInvariantViolation)
	}
	if len(e.Candidates) == 0 {
		return nil, fmt.Errorf("election %s has no candidates: %w", e.ID, reputation.ErrInvariantViolation)
	}

	slices := scopedSlices(e, cat)
	if len(slices) == 0 {
		return nil, fmt.Errorf("election %s: no slices in scope (province=%q city=%q): %w",
			e.ID, e.Province, e.City, reputation.ErrNotFound)
	}

	result := &Result{Votes: make(map[string]int64, len(e.Candidates))}
	for _, c := range e.Candidates {
		result.Votes[c.ID] = 0
	}

	for _, s := range slices {
		dv, err := ComputeDemographicVote(s, e.Candidates, snap, baseTurnout)
		if err != nil {
			return nil, fmt.Errorf("election %s: %w", e.ID, err)
		}
		result.BySlice = append(result.BySlice, dv)
		result.TotalEligible += dv.EligibleVoters
		result.TotalVotes += dv.EffectiveVotes
		for id, v := range dv.VotesByCandidate {
			result.Votes[id] += v
		}
	}

	if result.TotalEligible > 0 {
		result.TurnoutPercentage = float64(result.TotalVotes) / float64(result.TotalEligible) * 100
	}

	ids := make([]string, 0, len(result.Votes))
	for id := range result.Votes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if result.WinnerID == "" || result.Votes[id] > result.Votes[result.WinnerID] {
			result.WinnerID = id
		}
	}

	return result, nil
}

// scopedSlices returns the slices eligible for this election's scope: the
// whole world, one province, or one urban center.
func scopedSlices(e *Election, cat *demographics.Catalog) []*demographics.DemographicSlice {
	var out []*demographics.DemographicSlice
	for _, s := range cat.All() {
		if e.Province != "" && s.Province != e.Province {
			continue
		}
		if e.City != "" && s.UrbanCenter != e.City {
			continue
		}
		out = append(out, s)
	}
	return out
}
