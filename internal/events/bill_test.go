package events

import (
	"errors"
	"math"
	"testing"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

func TestApplyBillImpactMapWeights(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()

	ev := BillEvent{
		BillID: "b1", Title: "Goldfields Licence Reduction Bill",
		ProposerID: "alice",
		YesVoters:  []string{"bob"},
		NoVoters:   []string{"carol"},
		ImpactMap:  map[demographics.SliceID]float64{"vic-miners": 1.0},
	}

	changes, err := ApplyBill(led, cat, cfg, 1, ev)
	if err != nil {
		t.Fatal(err)
	}
	// Proposer, yes voter, no voter against one slice.
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}

	// impact 1.0 × role weight × magnitude scalar 5.
	wantAlice := 1.0 * cfg.ProposerWeight * cfg.MagnitudeScalar // +5
	wantBob := 1.0 * cfg.YesVoteWeight * cfg.MagnitudeScalar    // +2
	wantCarol := 1.0 * cfg.NoVoteWeight * cfg.MagnitudeScalar   // -1

	if got := led.Approval("alice", "vic-miners"); math.Abs(got-(50+wantAlice)) > 1e-9 {
		t.Fatalf("alice approval = %f, want %f", got, 50+wantAlice)
	}
	if got := led.Approval("bob", "vic-miners"); math.Abs(got-(50+wantBob)) > 1e-9 {
		t.Fatalf("bob approval = %f, want %f", got, 50+wantBob)
	}
	if got := led.Approval("carol", "vic-miners"); math.Abs(got-(50+wantCarol)) > 1e-9 {
		t.Fatalf("carol approval = %f, want %f", got, 50+wantCarol)
	}
}

func TestApplyBillPositionedHitsAllSlices(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()

	// Policy identical to the miners' baseline: alignment 1 with them.
	miners, _ := cat.Get("vic-miners")
	pos := miners.DefaultPosition

	ev := BillEvent{
		BillID: "b2", ProposerID: "alice",
		Position: &pos,
	}

	changes, err := ApplyBill(led, cat, cfg, 1, ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != cat.Len() {
		t.Fatalf("positioned bill should touch every slice: %d changes, want %d", len(changes), cat.Len())
	}

	want := 50 + 1.0*cfg.ProposerWeight*cfg.MagnitudeScalar
	if got := led.Approval("alice", "vic-miners"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("perfect-alignment approval = %f, want %f", got, want)
	}
	// The squatters disagree with the policy, so approval moves down.
	if got := led.Approval("alice", "nsw-squatters"); got >= 50 {
		t.Fatalf("opposed slice approval = %f, want below 50", got)
	}
}

func TestApplyBillAbstainIsNeutralButAudited(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()

	ev := BillEvent{
		BillID: "b3", ProposerID: "alice",
		AbstainVoters: []string{"dan"},
		ImpactMap:     map[demographics.SliceID]float64{"vic-miners": 0.8},
	}
	changes, err := ApplyBill(led, cat, cfg, 1, ev)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, c := range changes {
		if c.PlayerID == "dan" {
			found = true
			if c.Delta != 0 {
				t.Fatalf("abstain delta = %f, want 0", c.Delta)
			}
			if c.Source != reputation.SourceBillVoteAbstain {
				t.Fatalf("abstain source = %s", c.Source)
			}
		}
	}
	if !found {
		t.Fatal("abstaining voter should still get an audit record")
	}
}

func TestApplyBillValidatesBeforeWriting(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()

	ev := BillEvent{
		BillID: "b4", ProposerID: "alice",
		ImpactMap: map[demographics.SliceID]float64{
			"vic-miners": 0.5,
			"unknown":    0.5,
		},
	}
	_, err := ApplyBill(led, cat, cfg, 1, ev)
	if !errors.Is(err, reputation.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if got := led.Approval("alice", "vic-miners"); got != 50 {
		t.Fatalf("failed bill must not write: approval = %f", got)
	}

	ev = BillEvent{
		BillID: "b5", ProposerID: "alice",
		ImpactMap: map[demographics.SliceID]float64{"vic-miners": 1.5},
	}
	if _, err := ApplyBill(led, cat, cfg, 1, ev); !errors.Is(err, reputation.ErrInvalidRange) {
		t.Fatalf("impact outside [-1,1]: got %v, want ErrInvalidRange", err)
	}
}

func TestApplyBillOutcomeNegatesOnDefeat(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()

	ev := BillEvent{
		BillID: "b6", ProposerID: "alice",
		ImpactMap: map[demographics.SliceID]float64{"vic-miners": 0.5},
	}

	if _, err := ApplyBillOutcome(led, cat, cfg, 2, ev, false); err != nil {
		t.Fatal(err)
	}
	want := 50 - 0.5*cfg.ProposerWeight*cfg.MagnitudeScalar
	if got := led.Approval("alice", "vic-miners"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("defeated bill approval = %f, want %f", got, want)
	}

	// Outcome uses its own event key, so it coexists with the proposal.
	if _, err := ApplyBill(led, cat, cfg, 2, ev); err != nil {
		t.Fatalf("proposal after outcome should still apply: %v", err)
	}
}
