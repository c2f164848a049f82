package events

import (
	"errors"
	"math"
	"testing"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/entropy"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

func TestTransferBands(t *testing.T) {
	cases := []struct {
		approval float64
		lo, hi   float64
	}{
		{0, -7, 1},
		{39, -7, 1},
		{39.99, -7, 1},
		{40, -5, 5},
		{59, -5, 5},
		{59.99, -5, 5},
		{60, -1, 7},
		{100, -1, 7},
	}
	for _, c := range cases {
		lo, hi := TransferBand(c.approval)
		if lo != c.lo || hi != c.hi {
			t.Errorf("TransferBand(%.2f) = (%f, %f), want (%f, %f)", c.approval, lo, hi, c.lo, c.hi)
		}
	}
}

func TestApplyEndorsementSelfEndorseRejected(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()

	_, _, err := ApplyEndorsement(led, cat, tuning.Default(), entropy.NewSeeded(1), 1, "alice", "alice")
	if !errors.Is(err, reputation.ErrInvariantViolation) {
		t.Fatalf("got %v, want ErrInvariantViolation", err)
	}
}

func TestApplyEndorsementMovesEndorsedOnly(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()
	src := entropy.NewSeeded(11)

	// The endorser has standing with two slices; the third is untouched.
	mustApply(t, led, 1, "alice", "vic-miners", 20, "setup-1")
	mustApply(t, led, 1, "alice", "nsw-squatters", -35, "setup-2")
	aliceBefore := led.Approval("alice", "vic-miners")

	e, changes, err := ApplyEndorsement(led, cat, cfg, src, 2, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}

	if len(e.Transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(e.Transfers))
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	for _, tr := range e.Transfers {
		lo, hi := TransferBand(tr.EndorserApproval)
		if tr.Rate < lo || tr.Rate > hi {
			t.Fatalf("rate %f outside band (%f, %f) for approval %f", tr.Rate, lo, hi, tr.EndorserApproval)
		}
	}
	for _, c := range changes {
		if c.PlayerID != "bob" {
			t.Fatalf("endorsement delta applied to %s, want bob", c.PlayerID)
		}
	}

	// The endorser's own approval never moves.
	if got := led.Approval("alice", "vic-miners"); got != aliceBefore {
		t.Fatalf("endorser approval moved from %f to %f", aliceBefore, got)
	}
	// Bob has no standing with the slice alice never met.
	if got := len(led.SlicesFor("bob")); got != 2 {
		t.Fatalf("bob has %d scores, want 2", got)
	}
}

func TestTransferBandMidRangeAveragesNearZero(t *testing.T) {
	// For a mid-band endorser the transfer is symmetric around zero.
	src := entropy.NewSeeded(3)
	lo, hi := TransferBand(45)

	sum := 0.0
	const n = 5000
	for i := 0; i < n; i++ {
		sum += lo + src.Float()*(hi-lo)
	}
	mean := sum / n
	if math.Abs(mean) > 0.3 {
		t.Fatalf("mid-band mean transfer = %f, want near 0", mean)
	}
}

func mustApply(t *testing.T, led *reputation.Ledger, turn int, player, slice string, delta float64, sourceID string) {
	t.Helper()
	_, err := led.ApplyDelta(turn, reputation.Delta{
		PlayerID: player, SliceID: demographics.SliceID(slice), Delta: delta,
		Source: reputation.SourceNewsArticle, SourceID: sourceID,
	})
	if err != nil {
		t.Fatal(err)
	}
}
