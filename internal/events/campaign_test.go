package events

import (
	"errors"
	"testing"

	"github.com/NathanielJL/polsim-sub000/internal/entropy"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

func TestStartCampaignBoostAndWindow(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()
	src := entropy.NewSeeded(7)

	c, changes, err := StartCampaign(led, cat, cfg, src, 3, "alice", "vic-miners")
	if err != nil {
		t.Fatal(err)
	}

	if c.Boost < cfg.CampaignBoostMin || c.Boost > cfg.CampaignBoostMax {
		t.Fatalf("boost %f outside [%f, %f]", c.Boost, cfg.CampaignBoostMin, cfg.CampaignBoostMax)
	}
	if c.EndTurn != 3+cfg.CampaignDurationTurns {
		t.Fatalf("end turn = %d, want %d", c.EndTurn, 3+cfg.CampaignDurationTurns)
	}
	if c.Status != CampaignActive {
		t.Fatalf("status = %s, want active", c.Status)
	}
	if c.Province != "Victoria" {
		t.Fatalf("province = %s, want Victoria", c.Province)
	}

	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if got := led.Approval("alice", "vic-miners"); got != 50+c.Boost {
		t.Fatalf("approval = %f, want %f", got, 50+c.Boost)
	}
}

func TestStartCampaignUnknownSlice(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()

	_, _, err := StartCampaign(led, cat, tuning.Default(), entropy.NewSeeded(1), 1, "alice", "nowhere")
	if !errors.Is(err, reputation.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCancelCampaignLifecycle(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()

	c, _, err := StartCampaign(led, cat, tuning.Default(), entropy.NewSeeded(1), 1, "alice", "vic-miners")
	if err != nil {
		t.Fatal(err)
	}

	if err := CancelCampaign(c); err != nil {
		t.Fatal(err)
	}
	if c.Status != CampaignCancelled {
		t.Fatalf("status = %s, want cancelled", c.Status)
	}
	// Cancelling twice is an invariant violation.
	if err := CancelCampaign(c); !errors.Is(err, reputation.ErrInvariantViolation) {
		t.Fatalf("second cancel: got %v, want ErrInvariantViolation", err)
	}
	// The boost stays on the ledger.
	if got := led.Approval("alice", "vic-miners"); got <= 50 {
		t.Fatalf("cancel should not revert the boost, approval = %f", got)
	}
}

func TestAdvanceCampaignsCompletesAfterWindow(t *testing.T) {
	cat := testCatalog(t)
	led := reputation.NewLedger()
	cfg := tuning.Default()

	c, _, err := StartCampaign(led, cat, cfg, entropy.NewSeeded(1), 1, "alice", "vic-miners")
	if err != nil {
		t.Fatal(err)
	}
	all := []*Campaign{c}

	// Still inside the window, including the final turn itself.
	if got := AdvanceCampaigns(all, c.EndTurn); len(got) != 0 {
		t.Fatalf("campaign completed at end turn, want active through it")
	}

	completed := AdvanceCampaigns(all, c.EndTurn+1)
	if len(completed) != 1 || c.Status != CampaignCompleted {
		t.Fatalf("campaign should complete after end turn, status = %s", c.Status)
	}

	// Advancing again must not complete it twice.
	if got := AdvanceCampaigns(all, c.EndTurn+2); len(got) != 0 {
		t.Fatalf("completed campaign completed again: %d", len(got))
	}
}
