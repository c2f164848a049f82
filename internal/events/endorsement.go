package events

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/entropy"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// Transfer records how much approval one endorsement moved for one slice.
type Transfer struct {
	SliceID          demographics.SliceID `json:"slice_id"`
	EndorserApproval float64              `json:"endorser_approval"`
	Rate             float64              `json:"rate"` // [-7, 7]
}

// Endorsement is one player lending their standing to another. Costs 1
// action point; the caller checks the balance.
type Endorsement struct {
	ID         string     `json:"id"`
	EndorserID string     `json:"endorser_id"`
	EndorsedID string     `json:"endorsed_id"`
	Turn       int        `json:"turn"`
	Transfers  []Transfer `json:"transfers"`
	CostAP     int        `json:"cost_ap"`
}

// TransferBand returns the transfer-rate range for an endorser's approval
// with a slice. A weak endorser can hurt; a strong one mostly helps.
func TransferBand(approval float64) (lo, hi float64) {
	switch {
	case approval < 40:
		return -7, 1
	case approval < 60:
		return -5, 5
	default:
		return -1, 7
	}
}

// ApplyEndorsement samples a transfer rate for every slice the endorser
// has a reputation with and applies it to the endorsed player's score with
// that slice. Rates are sampled uniformly within the band for the
// endorser's current approval (uniform, not interpolated — see DESIGN.md).
func ApplyEndorsement(led *reputation.Ledger, cat *demographics.Catalog, cfg tuning.Config, src entropy.Source, turn int, endorserID, endorsedID string) (*Endorsement, []reputation.ReputationChange, error) {
	if endorserID == "" || endorsedID == "" {
		return nil, nil, fmt.Errorf("endorsement: empty player id: %w", reputation.ErrNotFound)
	}
	if endorserID == endorsedID {
		return nil, nil, fmt.Errorf("endorsement: player %s cannot endorse themselves: %w", endorserID, reputation.ErrInvariantViolation)
	}

	sliceIDs := led.SlicesFor(endorserID)
	sort.Slice(sliceIDs, func(i, j int) bool { return sliceIDs[i] < sliceIDs[j] })

	e := &Endorsement{
		ID:         uuid.NewString(),
		EndorserID: endorserID,
		EndorsedID: endorsedID,
		Turn:       turn,
		CostAP:     cfg.EndorsementCostAP,
	}

	var deltas []reputation.Delta
	for _, sliceID := range sliceIDs {
		if _, ok := cat.Get(sliceID); !ok {
			return nil, nil, fmt.Errorf("endorsement: slice %s: %w", sliceID, reputation.ErrNotFound)
		}
		approval := led.Approval(endorserID, sliceID)
		lo, hi := TransferBand(approval)
		rate := lo + src.Float()*(hi-lo)

		e.Transfers = append(e.Transfers, Transfer{
			SliceID:          sliceID,
			EndorserApproval: approval,
			Rate:             rate,
		})
		deltas = append(deltas, reputation.Delta{
			PlayerID:    endorsedID,
			SliceID:     sliceID,
			Delta:       rate,
			Source:      reputation.SourceEndorsement,
			SourceID:    e.ID,
			Reason:      fmt.Sprintf("endorsed by %s", endorserID),
			Calculation: politics.Calculation{Score: rate},
		})
	}

	changes, err := led.ApplyBatch(turn, deltas)
	if err != nil {
		return nil, nil, err
	}
	return e, changes, nil
}
