package election

import (
	"errors"
	"math"
	"testing"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
)

func resultCatalog(t *testing.T) *demographics.Catalog {
	t.Helper()

	melb := votingSlice("vic-shop-m", 1000, true)
	geelong := votingSlice("vic-fish-m", 500, true)
	geelong.Occupation = demographics.OccFisherman
	geelong.UrbanCenter = "Geelong"
	sydney := votingSlice("nsw-clerk-m", 800, true)
	sydney.Occupation = demographics.OccClerk
	sydney.Province = "New South Wales"
	sydney.UrbanCenter = "Sydney"
	servants := votingSlice("vic-serv-f", 2000, false)
	servants.Occupation = demographics.OccServant
	servants.Gender = demographics.GenderFemale

	cat, err := demographics.NewCatalog([]*demographics.DemographicSlice{melb, geelong, sydney, servants})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestComputeElectionResultRequiresClosedVoting(t *testing.T) {
	cat := resultCatalog(t)
	e := &Election{ID: "e1", VotingOpen: true, Candidates: []Candidate{{ID: "c1"}}}

	_, err := ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.5)
	if !errors.Is(err, reputation.ErrInvariantViolation) {
		t.Fatalf("open voting: got %v, want ErrInvariantViolation", err)
	}

	e.VotingOpen = false
	e.Candidates = nil
	_, err = ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.5)
	if !errors.Is(err, reputation.ErrInvariantViolation) {
		t.Fatalf("no candidates: got %v, want ErrInvariantViolation", err)
	}
}

func TestComputeElectionResultWorldScope(t *testing.T) {
	cat := resultCatalog(t)
	e := &Election{
		ID: "e2", Office: "Legislative Council",
		Candidates: []Candidate{{ID: "a"}, {ID: "b"}},
	}

	res, err := ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// Every slice in scope, but only the enfranchised count.
	if len(res.BySlice) != 4 {
		t.Fatalf("by-slice rows = %d, want 4", len(res.BySlice))
	}
	if res.TotalEligible != 2300 {
		t.Fatalf("eligible = %d, want 2300", res.TotalEligible)
	}
	if res.TotalVotes != 1150 {
		t.Fatalf("votes at neutral approval = %d, want 1150", res.TotalVotes)
	}
	if math.Abs(res.TurnoutPercentage-50) > 1e-9 {
		t.Fatalf("turnout = %f%%, want 50%%", res.TurnoutPercentage)
	}
}

func TestComputeElectionResultProvinceScope(t *testing.T) {
	cat := resultCatalog(t)
	e := &Election{
		ID: "e3", Province: "New South Wales",
		Candidates: []Candidate{{ID: "a"}},
	}

	res, err := ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.BySlice) != 1 || res.BySlice[0].SliceID != "nsw-clerk-m" {
		t.Fatalf("province scope leaked: %+v", res.BySlice)
	}
	if res.TotalEligible != 800 {
		t.Fatalf("eligible = %d, want 800", res.TotalEligible)
	}
}

func TestComputeElectionResultCityScope(t *testing.T) {
	cat := resultCatalog(t)
	e := &Election{
		ID: "e4", Province: "Victoria", City: "Geelong",
		Candidates: []Candidate{{ID: "a"}},
	}

	res, err := ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.BySlice) != 1 || res.BySlice[0].SliceID != "vic-fish-m" {
		t.Fatalf("city scope leaked: %+v", res.BySlice)
	}

	e.City = "Ballarat"
	if _, err := ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.5); !errors.Is(err, reputation.ErrNotFound) {
		t.Fatalf("empty scope: got %v, want ErrNotFound", err)
	}
}

func TestWinnerByPluralityWithIDTieBreak(t *testing.T) {
	cat := resultCatalog(t)

	// Identical candidates, even splits everywhere: a dead tie that must
	// break toward the lower candidate ID.
	e := &Election{ID: "e5", Candidates: []Candidate{{ID: "zeta"}, {ID: "alpha"}}}
	res, err := ComputeElectionResult(e, cat, reputation.NewLedger().Snapshot(), 0.4)
	if err != nil {
		t.Fatal(err)
	}
	if res.Votes["alpha"] != res.Votes["zeta"] {
		// Odd per-slice totals can hand out remainders; they also favor
		// the lower ID, so the winner check below still holds.
		if res.Votes["alpha"] < res.Votes["zeta"] {
			t.Fatalf("remainder went to higher ID: %v", res.Votes)
		}
	}
	if res.WinnerID != "alpha" {
		t.Fatalf("winner = %s, want alpha", res.WinnerID)
	}
}

func TestReputationSwingsTheResult(t *testing.T) {
	cat := resultCatalog(t)
	led := reputation.NewLedger()

	// Boost turnout in Victoria for candidate a's strongholds.
	for _, sliceID := range []demographics.SliceID{"vic-shop-m", "vic-fish-m"} {
		_, err := led.ApplyDelta(1, reputation.Delta{
			PlayerID: "a", SliceID: sliceID, Delta: 40,
			Source: reputation.SourceNewsArticle, SourceID: "boost-" + string(sliceID),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	e := &Election{ID: "e6", Candidates: []Candidate{{ID: "a"}, {ID: "b"}}}
	res, err := ComputeElectionResult(e, cat, led.Snapshot(), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// Identical platforms still split evenly, but the boosted approval
	// raises turnout above the neutral 1150.
	if res.TotalVotes <= 1150 {
		t.Fatalf("votes = %d, want above neutral 1150", res.TotalVotes)
	}
}
