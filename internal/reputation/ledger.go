// The reputation ledger — serialized, clamped, audited delta application
// over every (player, slice) approval score.
package reputation

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
)

// DefaultApproval is the approval a player starts with toward any slice.
const DefaultApproval = 50.0

// Approval bounds.
const (
	ApprovalMin = 0.0
	ApprovalMax = 100.0
)

type pairKey struct {
	player string
	slice  demographics.SliceID
}

type eventKey struct {
	source   Source
	sourceID string
	player   string
	slice    demographics.SliceID
}

// Delta is one requested reputation change, applied through ApplyBatch.
type Delta struct {
	PlayerID    string
	SliceID     demographics.SliceID
	Delta       float64
	Source      Source
	SourceID    string
	Reason      string
	Calculation politics.Calculation
}

// Ledger owns every ReputationScore and the audit trail of changes. All
// read-modify-write goes through one mutex, so concurrent deltas against
// the same pair serialize and neither's history entry is lost.
type Ledger struct {
	mu      sync.Mutex
	scores  map[pairKey]*ReputationScore
	applied map[eventKey]struct{}
	changes []ReputationChange

	now func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		scores:  make(map[pairKey]*ReputationScore),
		applied: make(map[eventKey]struct{}),
		now:     time.Now,
	}
}

// GetOrCreate returns a copy of the score for (player, slice), creating it
// at the default of 50 on first interaction.
func (l *Ledger) GetOrCreate(playerID string, sliceID demographics.SliceID) ReputationScore {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyScore(l.getOrCreateLocked(playerID, sliceID))
}

func (l *Ledger) getOrCreateLocked(playerID string, sliceID demographics.SliceID) *ReputationScore {
	key := pairKey{playerID, sliceID}
	s, ok := l.scores[key]
	if !ok {
		s = &ReputationScore{
			PlayerID: playerID,
			SliceID:  sliceID,
			Approval: DefaultApproval,
		}
		l.scores[key] = s
	}
	return s
}

// Approval returns the current approval for (player, slice) without
// creating a score; unknown pairs read as the default of 50.
func (l *Ledger) Approval(playerID string, sliceID demographics.SliceID) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.scores[pairKey{playerID, sliceID}]; ok {
		return s.Approval
	}
	return DefaultApproval
}

// ApplyDelta applies a single delta. See ApplyBatch for semantics.
func (l *Ledger) ApplyDelta(turn int, d Delta) (ReputationScore, error) {
	if _, err := l.ApplyBatch(turn, []Delta{d}); err != nil {
		return ReputationScore{}, err
	}
	return l.GetOrCreate(d.PlayerID, d.SliceID), nil
}

// ApplyBatch validates every delta, then applies them all under one lock.
// On any validation failure nothing is mutated. Each applied delta clamps
// approval to [0,100], appends one history point, and emits exactly one
// audit record whose Delta and Calculation.TotalDelta equal the post-clamp
// delta actually applied. A (source, sourceID, player, slice) tuple is
// applied at most once, ever.
func (l *Ledger) ApplyBatch(turn int, deltas []Delta) ([]ReputationChange, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Validate before mutating anything.
	seen := make(map[eventKey]struct{}, len(deltas))
	for _, d := range deltas {
		if d.PlayerID == "" || d.SliceID == "" {
			return nil, fmt.Errorf("delta from %s %s: empty player or slice: %w", d.Source, d.SourceID, ErrNotFound)
		}
		if math.IsNaN(d.Delta) || math.IsInf(d.Delta, 0) {
			return nil, fmt.Errorf("delta from %s %s: non-finite delta: %w", d.Source, d.SourceID, ErrInvalidRange)
		}
		key := eventKey{d.Source, d.SourceID, d.PlayerID, d.SliceID}
		if _, dup := l.applied[key]; dup {
			return nil, fmt.Errorf("%s %s already applied to (%s, %s): %w",
				d.Source, d.SourceID, d.PlayerID, d.SliceID, ErrDuplicateEvent)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s %s repeated within batch for (%s, %s): %w",
				d.Source, d.SourceID, d.PlayerID, d.SliceID, ErrDuplicateEvent)
		}
		seen[key] = struct{}{}
	}

	ts := l.now()
	applied := make([]ReputationChange, 0, len(deltas))
	for _, d := range deltas {
		s := l.getOrCreateLocked(d.PlayerID, d.SliceID)

		next := s.Approval + d.Delta
		if next < ApprovalMin {
			next = ApprovalMin
		}
		if next > ApprovalMax {
			next = ApprovalMax
		}
		appliedDelta := next - s.Approval
		s.Approval = next
		s.History = append(s.History, ApprovalDataPoint{
			Turn:     turn,
			Approval: next,
			Change:   appliedDelta,
			Reason:   d.Reason,
		})
		s.LastUpdated = ts
		s.TurnUpdated = turn

		calc := d.Calculation
		calc.TotalDelta = appliedDelta

		change := ReputationChange{
			ID:          uuid.NewString(),
			PlayerID:    d.PlayerID,
			SliceID:     d.SliceID,
			Delta:       appliedDelta,
			Source:      d.Source,
			SourceID:    d.SourceID,
			Calculation: calc,
			Timestamp:   ts,
			Turn:        turn,
		}
		l.changes = append(l.changes, change)
		l.applied[eventKey{d.Source, d.SourceID, d.PlayerID, d.SliceID}] = struct{}{}
		applied = append(applied, change)
	}

	return applied, nil
}

// SlicesFor returns the IDs of every slice the player has a score with.
func (l *Ledger) SlicesFor(playerID string) []demographics.SliceID {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []demographics.SliceID
	for key := range l.scores {
		if key.player == playerID {
			out = append(out, key.slice)
		}
	}
	return out
}

// ApprovalSnapshot is a point-in-time read of every approval, used by
// election aggregation so counting never interleaves with in-flight
// deltas. Unknown pairs read as the default of 50.
type ApprovalSnapshot map[string]map[demographics.SliceID]float64

// Approval reads a pair's approval from the snapshot.
func (s ApprovalSnapshot) Approval(playerID string, sliceID demographics.SliceID) float64 {
	if m, ok := s[playerID]; ok {
		if v, ok := m[sliceID]; ok {
			return v
		}
	}
	return DefaultApproval
}

// Snapshot copies every current approval under the ledger lock.
func (l *Ledger) Snapshot() ApprovalSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := make(ApprovalSnapshot)
	for key, s := range l.scores {
		m, ok := snap[key.player]
		if !ok {
			m = make(map[demographics.SliceID]float64)
			snap[key.player] = m
		}
		m[key.slice] = s.Approval
	}
	return snap
}

// Scores returns copies of every score, for persistence and display.
func (l *Ledger) Scores() []ReputationScore {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ReputationScore, 0, len(l.scores))
	for _, s := range l.scores {
		out = append(out, copyScore(s))
	}
	return out
}

// Changes returns a copy of the audit records accumulated since the last
// drain.
func (l *Ledger) Changes() []ReputationChange {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ReputationChange, len(l.changes))
	copy(out, l.changes)
	return out
}

// DrainChanges returns the accumulated audit records and clears the
// in-memory buffer; the persistence layer calls this after a flush.
func (l *Ledger) DrainChanges() []ReputationChange {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.changes
	l.changes = nil
	return out
}

// Restore loads previously persisted scores and replayed event keys,
// used when resuming a session from the database.
func (l *Ledger) Restore(scores []ReputationScore, changes []ReputationChange) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range scores {
		s := scores[i]
		l.scores[pairKey{s.PlayerID, s.SliceID}] = &s
	}
	for _, c := range changes {
		l.applied[eventKey{c.Source, c.SourceID, c.PlayerID, c.SliceID}] = struct{}{}
	}
}

func copyScore(s *ReputationScore) ReputationScore {
	out := *s
	out.History = make([]ApprovalDataPoint, len(s.History))
	copy(out.History, s.History)
	return out
}
