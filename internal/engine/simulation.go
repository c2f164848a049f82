// Package engine ties the reputation core together: the slice catalog,
// the ledger, the decaying-effect registry, and the event translators,
// behind one Simulation owning the current turn.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/election"
	"github.com/NathanielJL/polsim-sub000/internal/entropy"
	"github.com/NathanielJL/polsim-sub000/internal/events"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// Event is a notable occurrence in the session, kept for dashboards and
// the turn report.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "bill", "news", "campaign", "endorsement", "scandal", "election", "turn"
}

// SimStats tracks aggregate session statistics.
type SimStats struct {
	Slices             int     `json:"slices"`
	TotalPopulation    int64   `json:"total_population"`
	EligiblePopulation int64   `json:"eligible_population"`
	TrackedScores      int     `json:"tracked_scores"`
	ActiveCampaigns    int     `json:"active_campaigns"`
	ActiveEffects      int     `json:"active_effects"`
	ChangesThisTurn    int     `json:"changes_this_turn"`
	AvgApproval        float64 `json:"avg_approval"`
}

// Simulation owns the full engine state for one session. All player-facing
// operations and AdvanceTurn serialize on its mutex; the Ledger has its
// own lock for the approval read-modify-write.
type Simulation struct {
	Catalog *demographics.Catalog
	Ledger  *reputation.Ledger
	Decay   *reputation.DecayRegistry
	Config  tuning.Config
	Entropy entropy.Source

	mu           sync.Mutex
	currentTurn  int
	campaigns    map[string]*events.Campaign
	endorsements []*events.Endorsement
	elections    map[string]*election.Election
	Events       []Event
	Stats        SimStats
}

// NewSimulation creates a simulation over a generated slice catalog.
func NewSimulation(cat *demographics.Catalog, cfg tuning.Config, src entropy.Source) *Simulation {
	s := &Simulation{
		Catalog:   cat,
		Ledger:    reputation.NewLedger(),
		Decay:     reputation.NewDecayRegistry(),
		Config:    cfg,
		Entropy:   src,
		campaigns: make(map[string]*events.Campaign),
		elections: make(map[string]*election.Election),
	}
	s.updateStats(0)
	return s
}

// CurrentTurn returns the most recently processed turn number.
func (s *Simulation) CurrentTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTurn
}

// SetTurn restores the turn counter when resuming a saved session.
func (s *Simulation) SetTurn(turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTurn = turn
}

// EmitEvent appends a session event.
func (s *Simulation) EmitEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(e)
}

func (s *Simulation) emitLocked(e Event) {
	s.Events = append(s.Events, e)
	// Trim old events to prevent unbounded growth (keep last 1000).
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

// SubmitBill applies a bill proposal and its vote roster.
func (s *Simulation) SubmitBill(ev events.BillEvent) ([]reputation.ReputationChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := events.ApplyBill(s.Ledger, s.Catalog, s.Config, s.currentTurn, ev)
	if err != nil {
		return nil, err
	}
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("%s proposed %q (%d yes, %d no, %d abstain)", ev.ProposerID, ev.Title, len(ev.YesVoters), len(ev.NoVoters), len(ev.AbstainVoters)),
		Category:    "bill",
	})
	return changes, nil
}

// ResolveBill applies a bill's enactment (or defeat) effect.
func (s *Simulation) ResolveBill(ev events.BillEvent, passed bool) ([]reputation.ReputationChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := events.ApplyBillOutcome(s.Ledger, s.Catalog, s.Config, s.currentTurn, ev, passed)
	if err != nil {
		return nil, err
	}
	verdict := "passed"
	if !passed {
		verdict = "defeated"
	}
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("%q was %s", ev.Title, verdict),
		Category:    "bill",
	})
	return changes, nil
}

// PublishNews applies a news article's impacts and tracks their decay.
func (s *Simulation) PublishNews(ev events.NewsEvent) ([]reputation.ReputationChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := events.ApplyNews(s.Ledger, s.Catalog, s.Decay, s.Config, s.currentTurn, ev)
	if err != nil {
		return nil, err
	}
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("news published: %q (%d impacts)", ev.Headline, len(ev.Impacts)),
		Category:    "news",
	})
	return changes, nil
}

// StartCampaign launches a campaign for a player against one slice.
// Sufficient action points and currency are the caller's responsibility.
func (s *Simulation) StartCampaign(playerID string, sliceID demographics.SliceID) (*events.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, err := events.StartCampaign(s.Ledger, s.Catalog, s.Config, s.Entropy, s.currentTurn, playerID, sliceID)
	if err != nil {
		return nil, err
	}
	s.campaigns[c.ID] = c
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("%s launched a campaign in %s (boost %.1f)", playerID, c.Province, c.Boost),
		Category:    "campaign",
	})
	return c, nil
}

// CancelCampaign cancels an active campaign by id.
func (s *Simulation) CancelCampaign(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return fmt.Errorf("campaign %s: %w", id, reputation.ErrNotFound)
	}
	if err := events.CancelCampaign(c); err != nil {
		return err
	}
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("%s cancelled their campaign in %s", c.PlayerID, c.Province),
		Category:    "campaign",
	})
	return nil
}

// Campaigns returns all campaigns sorted by start turn then id.
func (s *Simulation) Campaigns() []*events.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*events.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTurn != out[j].StartTurn {
			return out[i].StartTurn < out[j].StartTurn
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Endorse applies one player's endorsement of another.
func (s *Simulation) Endorse(endorserID, endorsedID string) (*events.Endorsement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, err := events.ApplyEndorsement(s.Ledger, s.Catalog, s.Config, s.Entropy, s.currentTurn, endorserID, endorsedID)
	if err != nil {
		return nil, err
	}
	s.endorsements = append(s.endorsements, e)
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("%s endorsed %s across %d slices", endorserID, endorsedID, len(e.Transfers)),
		Category:    "endorsement",
	})
	return e, nil
}

// Endorsements returns all recorded endorsements.
func (s *Simulation) Endorsements() []*events.Endorsement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*events.Endorsement, len(s.endorsements))
	copy(out, s.endorsements)
	return out
}

// TriggerScandal applies a scandal and registers its decay.
func (s *Simulation) TriggerScandal(ev events.ScandalEvent) ([]reputation.ReputationChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := events.ApplyScandal(s.Ledger, s.Catalog, s.Decay, s.Config, s.currentTurn, ev)
	if err != nil {
		return nil, err
	}
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("scandal engulfs %s: %q", ev.PlayerID, ev.Title),
		Category:    "scandal",
	})
	return changes, nil
}

// ScheduleElection registers an election for later tallying.
func (s *Simulation) ScheduleElection(e *election.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		return fmt.Errorf("election has empty id: %w", reputation.ErrNotFound)
	}
	if _, exists := s.elections[e.ID]; exists {
		return fmt.Errorf("election %s already scheduled: %w", e.ID, reputation.ErrDuplicateEvent)
	}
	s.elections[e.ID] = e
	s.emitLocked(Event{
		Turn:        s.currentTurn,
		Description: fmt.Sprintf("election announced for %s (%d candidates)", e.Office, len(e.Candidates)),
		Category:    "election",
	})
	return nil
}

// Election returns a scheduled election by id.
func (s *Simulation) Election(id string) (*election.Election, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	return e, ok
}

// Elections returns all scheduled elections sorted by id.
func (s *Simulation) Elections() []*election.Election {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*election.Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseVoting closes an election's polls and tallies the result over a
// snapshot of the ledger taken at close, so counting never races with
// in-flight deltas.
func (s *Simulation) CloseVoting(id string, baseTurnout float64) (*election.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.elections[id]
	if !ok {
		return nil, fmt.Errorf("election %s: %w", id, reputation.ErrNotFound)
	}
	if e.Status == election.StatusCompleted {
		return nil, fmt.Errorf("election %s already completed: %w", id, reputation.ErrInvariantViolation)
	}

	e.VotingOpen = false
	snap := s.Ledger.Snapshot()
	result, err := election.ComputeElectionResult(e, s.Catalog, snap, baseTurnout)
	if err != nil {
		return nil, err
	}
	e.Results = result
	e.Status = election.StatusCompleted

	s.emitLocked(Event{
		Turn: s.currentTurn,
		Description: fmt.Sprintf("%s election decided: %s wins with %d of %d votes (%.1f%% turnout)",
			e.Office, result.WinnerID, result.Votes[result.WinnerID], result.TotalVotes, result.TurnoutPercentage),
		Category: "election",
	})
	return result, nil
}

// AdvanceTurn moves the session to the given turn: campaigns whose window
// has passed complete, and decaying news/scandal residuals take their
// step. Turns must be advanced in order, exactly once each — a repeated or
// out-of-order turn is rejected and nothing is applied twice.
func (s *Simulation) AdvanceTurn(turn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn != s.currentTurn+1 {
		err := fmt.Errorf("advance to turn %d from turn %d: %w", turn, s.currentTurn, reputation.ErrInvariantViolation)
		slog.Error("turn advance rejected", "error", err)
		return err
	}
	s.currentTurn = turn

	all := make([]*events.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		all = append(all, c)
	}
	completed := events.AdvanceCampaigns(all, turn)
	for _, c := range completed {
		s.emitLocked(Event{
			Turn:        turn,
			Description: fmt.Sprintf("%s's campaign in %s has run its course", c.PlayerID, c.Province),
			Category:    "campaign",
		})
	}

	decayChanges, err := events.ApplyDecay(s.Ledger, s.Decay, s.Config, turn)
	if err != nil {
		slog.Error("decay application failed", "turn", turn, "error", err)
		return err
	}

	s.updateStats(len(decayChanges))

	slog.Info("turn report",
		"turn", turn,
		"campaigns_completed", len(completed),
		"decay_changes", len(decayChanges),
		"active_effects", s.Decay.Len(),
		"tracked_scores", s.Stats.TrackedScores,
		"avg_approval", fmt.Sprintf("%.2f", s.Stats.AvgApproval),
	)
	return nil
}

func (s *Simulation) updateStats(changesThisTurn int) {
	scores := s.Ledger.Scores()
	total := 0.0
	for _, sc := range scores {
		total += sc.Approval
	}

	active := 0
	for _, c := range s.campaigns {
		if c.Status == events.CampaignActive {
			active++
		}
	}

	s.Stats = SimStats{
		Slices:             s.Catalog.Len(),
		TotalPopulation:    s.Catalog.TotalPopulation(),
		EligiblePopulation: s.Catalog.EligiblePopulation(),
		TrackedScores:      len(scores),
		ActiveCampaigns:    active,
		ActiveEffects:      s.Decay.Len(),
		ChangesThisTurn:    changesThisTurn,
	}
	if len(scores) > 0 {
		s.Stats.AvgApproval = total / float64(len(scores))
	}
}

// RestoreCampaigns reloads persisted campaigns when resuming a session.
func (s *Simulation) RestoreCampaigns(campaigns []*events.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
}

// RestoreElections reloads persisted elections when resuming a session.
func (s *Simulation) RestoreElections(elections []*election.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range elections {
		s.elections[e.ID] = e
	}
}
