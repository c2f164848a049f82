package events

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/entropy"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Campaign is a player drive targeting one slice in one province. The
// boost is rolled once at creation and applied once as a flat delta — it
// is never reapplied during the window and does not decay afterward.
// Caller is responsible for checking the player can afford the cost.
type Campaign struct {
	ID       string               `json:"id"`
	PlayerID string               `json:"player_id"`
	SliceID  demographics.SliceID `json:"slice_id"`
	Province string               `json:"province"`

	StartTurn int            `json:"start_turn"`
	EndTurn   int            `json:"end_turn"`
	Boost     float64        `json:"boost"`
	Status    CampaignStatus `json:"status"`

	CostCurrency int64 `json:"cost_currency"`
	CostAP       int   `json:"cost_ap"`
}

// StartCampaign rolls the boost, applies it to the target slice, and
// returns the active campaign. The boost is uniform over the configured
// bounds (default [1,5] approval points).
func StartCampaign(led *reputation.Ledger, cat *demographics.Catalog, cfg tuning.Config, src entropy.Source, turn int, playerID string, sliceID demographics.SliceID) (*Campaign, []reputation.ReputationChange, error) {
	if playerID == "" {
		return nil, nil, fmt.Errorf("campaign: empty player id: %w", reputation.ErrNotFound)
	}
	slice, ok := cat.Get(sliceID)
	if !ok {
		return nil, nil, fmt.Errorf("campaign: slice %s: %w", sliceID, reputation.ErrNotFound)
	}

	boost := cfg.CampaignBoostMin + src.Float()*(cfg.CampaignBoostMax-cfg.CampaignBoostMin)

	c := &Campaign{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		SliceID:      sliceID,
		Province:     slice.Province,
		StartTurn:    turn,
		EndTurn:      turn + cfg.CampaignDurationTurns,
		Boost:        boost,
		Status:       CampaignActive,
		CostCurrency: cfg.CampaignCostCurrency,
		CostAP:       cfg.CampaignCostAP,
	}

	changes, err := led.ApplyBatch(turn, []reputation.Delta{{
		PlayerID:    playerID,
		SliceID:     sliceID,
		Delta:       boost,
		Source:      reputation.SourceCampaign,
		SourceID:    c.ID,
		Reason:      fmt.Sprintf("campaign in %s", slice.Province),
		Calculation: politics.Calculation{Score: boost},
	}})
	if err != nil {
		return nil, nil, err
	}
	return c, changes, nil
}

// CancelCampaign moves an active campaign to cancelled. The already-applied
// boost stays on the ledger.
func CancelCampaign(c *Campaign) error {
	if c.Status != CampaignActive {
		return fmt.Errorf("campaign %s is %s, not active: %w", c.ID, c.Status, reputation.ErrInvariantViolation)
	}
	c.Status = CampaignCancelled
	return nil
}

// AdvanceCampaigns completes every active campaign whose window has passed
// (currentTurn > endTurn). Returns the campaigns completed this turn.
func AdvanceCampaigns(campaigns []*Campaign, turn int) []*Campaign {
	var completed []*Campaign
	for _, c := range campaigns {
		if c.Status == CampaignActive && turn > c.EndTurn {
			c.Status = CampaignCompleted
			completed = append(completed, c)
		}
	}
	return completed
}
