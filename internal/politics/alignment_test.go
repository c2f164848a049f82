package politics

import (
	"math"
	"testing"
)

func TestAlignmentScoreIdenticalPositions(t *testing.T) {
	p := PoliticalPosition{Cube: Cube{Economic: 3, Authority: -5, Social: 7}}
	p.Issues[IssueTaxes] = 4
	p.Salience[IssueTaxes] = 0.8
	p.Issues[IssueRailways] = -6
	p.Salience[IssueRailways] = 0.5

	score, calc := AlignmentScore(p, p)
	if math.Abs(score-1) > 1e-9 {
		t.Fatalf("identical positions should score 1, got %f", score)
	}
	if calc.Cube == nil || calc.Cube.Distance != 0 {
		t.Fatalf("expected zero cube distance, got %+v", calc.Cube)
	}
	if len(calc.Issues) != NumIssues {
		t.Fatalf("expected %d issue contributions, got %d", NumIssues, len(calc.Issues))
	}
}

func TestAlignmentScoreOppositeExtremes(t *testing.T) {
	a := PoliticalPosition{Cube: Cube{Economic: AxisMin, Authority: AxisMin, Social: AxisMin}}
	b := PoliticalPosition{Cube: Cube{Economic: AxisMax, Authority: AxisMax, Social: AxisMax}}
	for i := 0; i < NumIssues; i++ {
		a.Issues[i] = AxisMin
		b.Issues[i] = AxisMax
		b.Salience[i] = 1
	}

	score, _ := AlignmentScore(a, b)
	if math.Abs(score-(-1)) > 1e-9 {
		t.Fatalf("opposite extremes should score -1, got %f", score)
	}
}

func TestAlignmentScoreZeroSalienceUsesCubeOnly(t *testing.T) {
	a := PoliticalPosition{Cube: Cube{Economic: 2, Authority: 2, Social: 2}}
	b := PoliticalPosition{Cube: Cube{Economic: -2, Authority: -2, Social: -2}}
	// Issue positions disagree wildly, but nobody cares about them.
	for i := 0; i < NumIssues; i++ {
		a.Issues[i] = AxisMax
		b.Issues[i] = AxisMin
	}

	score, calc := AlignmentScore(a, b)
	if calc.TotalWeight != CubeWeight {
		t.Fatalf("zero salience should leave only the cube weight, got %f", calc.TotalWeight)
	}
	if math.Abs(score-calc.Cube.Contribution) > 1e-9 {
		t.Fatalf("score %f should equal cube contribution %f", score, calc.Cube.Contribution)
	}
}

func TestAlignmentScoreAlwaysBoundedAndFinite(t *testing.T) {
	positions := []PoliticalPosition{
		{},
		{Cube: Cube{Economic: AxisMax, Authority: AxisMin, Social: AxisMax}},
		func() PoliticalPosition {
			var p PoliticalPosition
			p.Cube = Cube{Economic: -3.7, Authority: 9.1, Social: 0.2}
			for i := 0; i < NumIssues; i++ {
				p.Issues[i] = float64(i%21) - 10
				p.Salience[i] = float64(i%11) / 10
			}
			return p
		}(),
	}

	for i, a := range positions {
		for j, b := range positions {
			score, calc := AlignmentScore(a, b)
			if math.IsNaN(score) || math.IsInf(score, 0) {
				t.Fatalf("positions %d vs %d: non-finite score %f", i, j, score)
			}
			if score < -1 || score > 1 {
				t.Fatalf("positions %d vs %d: score %f outside [-1,1]", i, j, score)
			}
			if calc.Score != score {
				t.Fatalf("audit score %f disagrees with returned score %f", calc.Score, score)
			}
		}
	}
}

func TestAlignmentScoreSalienceWeighting(t *testing.T) {
	// b agrees with a on taxes (high salience) and disagrees on railways
	// (low salience): the score should land closer to agreement than an
	// even weighting would.
	var a, b PoliticalPosition
	a.Issues[IssueTaxes], b.Issues[IssueTaxes] = 8, 8
	a.Issues[IssueRailways], b.Issues[IssueRailways] = 8, -8
	b.Salience[IssueTaxes] = 1.0
	b.Salience[IssueRailways] = 0.1

	weighted, _ := AlignmentScore(a, b)

	b.Salience[IssueTaxes] = 0.5
	b.Salience[IssueRailways] = 0.5
	even, _ := AlignmentScore(a, b)

	if weighted <= even {
		t.Fatalf("salience-weighted score %f should exceed even-weighted %f", weighted, even)
	}
}
