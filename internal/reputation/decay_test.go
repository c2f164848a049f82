package reputation

import (
	"math"
	"testing"
)

func TestDecayStepShrinksRemaining(t *testing.T) {
	reg := NewDecayRegistry()
	reg.Track(DecayingEffect{
		PlayerID: "alice", SliceID: "slice-1",
		Source: SourceNewsArticle, SourceID: "n1",
		Remaining: 5, Rate: 0.2, Interval: 1,
	})

	steps := reg.Advance(1, 0.1)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	// 5 → 4, so the counter-delta is -1.
	if math.Abs(steps[0].Delta-(-1)) > 1e-9 {
		t.Fatalf("delta = %f, want -1", steps[0].Delta)
	}
	if steps[0].Expired {
		t.Fatal("effect should survive at remaining 4")
	}
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", reg.Len())
	}
	if got := reg.Active()[0].Remaining; math.Abs(got-4) > 1e-9 {
		t.Fatalf("remaining = %f, want 4", got)
	}
}

func TestDecayExpiresBelowThreshold(t *testing.T) {
	reg := NewDecayRegistry()
	reg.Track(DecayingEffect{
		PlayerID: "alice", SliceID: "slice-1",
		Source: SourceScandal, SourceID: "s1",
		Remaining: -0.12, Rate: 0.25, Interval: 1,
	})

	steps := reg.Advance(1, 0.1)
	if len(steps) != 1 || !steps[0].Expired {
		t.Fatalf("effect should expire, got %+v", steps)
	}
	// The full residual is reversed on expiry.
	if math.Abs(steps[0].Delta-0.12) > 1e-9 {
		t.Fatalf("final delta = %f, want 0.12", steps[0].Delta)
	}
	if reg.Len() != 0 {
		t.Fatalf("registry should be empty, has %d", reg.Len())
	}
}

func TestDecayRespectsInterval(t *testing.T) {
	reg := NewDecayRegistry()
	reg.Track(DecayingEffect{
		PlayerID: "alice", SliceID: "slice-1",
		Source: SourceScandal, SourceID: "s1",
		Remaining: 10, Rate: 0.25, Interval: 3,
	})

	if steps := reg.Advance(1, 0.1); len(steps) != 0 {
		t.Fatalf("turn 1 should skip interval-3 effect, got %d steps", len(steps))
	}
	if steps := reg.Advance(2, 0.1); len(steps) != 0 {
		t.Fatalf("turn 2 should skip, got %d steps", len(steps))
	}
	steps := reg.Advance(3, 0.1)
	if len(steps) != 1 {
		t.Fatalf("turn 3 should decay, got %d steps", len(steps))
	}
	if math.Abs(steps[0].Delta-(-2.5)) > 1e-9 {
		t.Fatalf("delta = %f, want -2.5", steps[0].Delta)
	}
}

func TestDecayFullRunReversesEverything(t *testing.T) {
	reg := NewDecayRegistry()
	reg.Track(DecayingEffect{
		PlayerID: "alice", SliceID: "slice-1",
		Source: SourceNewsArticle, SourceID: "n1",
		Remaining: 4, Rate: 0.2, Interval: 1,
	})

	total := 0.0
	for turn := 1; turn <= 50 && reg.Len() > 0; turn++ {
		for _, st := range reg.Advance(turn, 0.1) {
			total += st.Delta
		}
	}
	if reg.Len() != 0 {
		t.Fatal("effect never expired")
	}
	// Summed counter-deltas exactly cancel the original +4.
	if math.Abs(total-(-4)) > 1e-9 {
		t.Fatalf("total decay = %f, want -4", total)
	}
}
