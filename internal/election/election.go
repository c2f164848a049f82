// Package election converts per-slice reputation and population into
// effective votes and election results.
package election

import (
	"time"

	"github.com/NathanielJL/polsim-sub000/internal/politics"
)

// Status is the lifecycle state of an election.
type Status string

const (
	StatusAnnounced   Status = "announced"
	StatusCampaigning Status = "campaigning"
	StatusVoting      Status = "voting"
	StatusCompleted   Status = "completed"
)

// Candidate is one contender for an office.
type Candidate struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Platform     string                     `json:"platform"`
	Position     politics.PoliticalPosition `json:"position"`
	Endorsements []string                   `json:"endorsements,omitempty"` // endorsement ids
	FundsRaised  int64                      `json:"funds_raised"`
}

// Election is a contest for an office, optionally scoped to a province or
// urban center.
type Election struct {
	ID       string `json:"id"`
	Office   string `json:"office"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`

	Candidates []Candidate `json:"candidates"`

	VotingOpen bool      `json:"voting_open"`
	ClosesAt   time.Time `json:"closes_at"`

	Status  Status  `json:"status"`
	Results *Result `json:"results,omitempty"`
}

// Result is the tallied outcome of an election.
type Result struct {
	WinnerID          string           `json:"winner_id"`
	Votes             map[string]int64 `json:"votes"` // candidate id → votes
	TotalVotes        int64            `json:"total_votes"`
	TotalEligible     int64            `json:"total_eligible"`
	TurnoutPercentage float64          `json:"turnout_percentage"`
	BySlice           []DemographicVote `json:"by_slice,omitempty"`
}
