package reputation

import (
	"time"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
)

// Source categorizes what kind of game event produced a reputation delta.
type Source string

const (
	SourceBillProposal    Source = "bill-proposal"
	SourceBillVoteYes     Source = "bill-vote-yes"
	SourceBillVoteNo      Source = "bill-vote-no"
	SourceBillVoteAbstain Source = "bill-vote-abstain"
	SourceBillOutcome     Source = "bill-outcome"
	SourceNewsArticle     Source = "news-article"
	SourceCampaign        Source = "campaign"
	SourceEndorsement     Source = "endorsement"
	SourceScandal         Source = "scandal"
	SourceTurnDecay       Source = "turn-decay"
)

// ApprovalDataPoint is one entry in a score's append-only history.
type ApprovalDataPoint struct {
	Turn     int     `json:"turn"`
	Approval float64 `json:"approval"`
	Change   float64 `json:"change"`
	Reason   string  `json:"reason"`
}

// ReputationScore is the durable approval a player holds with one slice.
// Created lazily at the default of 50; never deleted. History is append-
// only — external collaborators may archive it, the engine never prunes.
type ReputationScore struct {
	PlayerID string               `json:"player_id"`
	SliceID  demographics.SliceID `json:"slice_id"`

	Approval    float64             `json:"approval"` // always clamped to [0,100]
	History     []ApprovalDataPoint `json:"history"`
	LastUpdated time.Time           `json:"last_updated"`
	TurnUpdated int                 `json:"turn_updated"`
}

// ReputationChange is the immutable audit record of one delta application.
type ReputationChange struct {
	ID          string               `json:"id"`
	PlayerID    string               `json:"player_id"`
	SliceID     demographics.SliceID `json:"slice_id"`
	Delta       float64              `json:"delta"` // post-clamp applied delta
	Source      Source               `json:"source"`
	SourceID    string               `json:"source_id"`
	Calculation politics.Calculation `json:"calculation"`
	Timestamp   time.Time            `json:"timestamp"`
	Turn        int                  `json:"turn"`
}
