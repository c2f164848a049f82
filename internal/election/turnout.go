// Turnout and vote distribution. Reputation moves turnout around an
// externally supplied baseline; alignment with each candidate's platform
// splits the votes that show up.
package election

import (
	"fmt"
	"math"
	"sort"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
)

// DemographicVote is one slice's contribution to an election.
type DemographicVote struct {
	SliceID          demographics.SliceID `json:"slice_id"`
	EligibleVoters   int64                `json:"eligible_voters"`
	FinalTurnout     float64              `json:"final_turnout"`
	EffectiveVotes   int64                `json:"effective_votes"`
	VotesByCandidate map[string]int64     `json:"votes_by_candidate"`
}

// ComputeDemographicVote computes how one slice votes. The base turnout is
// an external input (era/settlement dependent); the average of the
// candidates' approvals with the slice shifts it up or down around 50
// before clamping to [0,1]. Effective votes split across candidates
// proportional to shift-and-normalized alignment scores; all-equal scores
// split evenly.
func ComputeDemographicVote(slice *demographics.DemographicSlice, candidates []Candidate, snap reputation.ApprovalSnapshot, baseTurnout float64) (DemographicVote, error) {
	dv := DemographicVote{SliceID: slice.ID, VotesByCandidate: make(map[string]int64)}

	if len(candidates) == 0 {
		return dv, fmt.Errorf("election has no candidates: %w", reputation.ErrInvariantViolation)
	}
	if baseTurnout < 0 || baseTurnout > 1 || math.IsNaN(baseTurnout) {
		return dv, fmt.Errorf("base turnout %.3f outside [0,1]: %w", baseTurnout, reputation.ErrInvalidRange)
	}
	if slice.Population < 0 {
		return dv, fmt.Errorf("slice %s population %d negative: %w", slice.ID, slice.Population, reputation.ErrInvalidRange)
	}

	if slice.CanVote {
		dv.EligibleVoters = slice.Population
	}

	avgApproval := 0.0
	for _, c := range candidates {
		avgApproval += snap.Approval(c.ID, slice.ID)
	}
	avgApproval /= float64(len(candidates))

	deviation := avgApproval - 50
	turnout := baseTurnout * (1 + deviation/100)
	if turnout < 0 {
		turnout = 0
	}
	if turnout > 1 {
		turnout = 1
	}
	dv.FinalTurnout = turnout
	dv.EffectiveVotes = int64(math.Round(float64(dv.EligibleVoters) * turnout))

	// Alignment weights, shifted so the minimum becomes 0.
	scores := make([]float64, len(candidates))
	minScore := math.Inf(1)
	for i, c := range candidates {
		s, _ := politics.AlignmentScore(c.Position, slice.DefaultPosition)
		scores[i] = s
		if s < minScore {
			minScore = s
		}
	}
	weights := make([]float64, len(candidates))
	var totalWeight float64
	for i, s := range scores {
		weights[i] = s - minScore
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		// All-equal scores: split evenly.
		for i := range weights {
			weights[i] = 1
		}
		totalWeight = float64(len(weights))
	}

	distributeVotes(dv.EffectiveVotes, candidates, weights, totalWeight, dv.VotesByCandidate)
	return dv, nil
}

// distributeVotes allocates an integer vote total proportionally by
// weight, handing out rounding remainders by largest fractional share
// (candidate ID ascending on fraction ties).
func distributeVotes(total int64, candidates []Candidate, weights []float64, totalWeight float64, out map[string]int64) {
	type share struct {
		idx  int
		frac float64
	}
	var assigned int64
	shares := make([]share, len(candidates))
	for i, c := range candidates {
		exact := float64(total) * weights[i] / totalWeight
		whole := int64(math.Floor(exact))
		out[c.ID] = whole
		assigned += whole
		shares[i] = share{idx: i, frac: exact - float64(whole)}
	}

	sort.Slice(shares, func(a, b int) bool {
		if shares[a].frac != shares[b].frac {
			return shares[a].frac > shares[b].frac
		}
		return candidates[shares[a].idx].ID < candidates[shares[b].idx].ID
	})
	for i := int64(0); i < total-assigned; i++ {
		out[candidates[shares[i%int64(len(shares))].idx].ID]++
	}
}
