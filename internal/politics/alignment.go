// Alignment scoring — the normalized similarity between two political
// positions, with a full audit breakdown of every contribution.
package politics

import "math"

// CubeWeight is the fixed weight of the cube contribution. The cube is
// coarser than the explicit issues, so it counts as a single issue of
// weight 1 against the 34 salience-weighted ones.
const CubeWeight = 1.0

// IssueContribution records one issue's share of an alignment score.
type IssueContribution struct {
	Issue         Issue   `json:"issue"`
	IssueName     string  `json:"issue_name"`
	PlayerValue   float64 `json:"player_value"`
	GroupValue    float64 `json:"group_value"`
	Salience      float64 `json:"salience"`
	Weight        float64 `json:"weight"`
	Contribution  float64 `json:"contribution"` // agreement in [-1,1] before weighting
}

// CubeContribution records the cube-distance share of an alignment score.
type CubeContribution struct {
	Distance     float64 `json:"distance"`
	MaxDistance  float64 `json:"max_distance"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Calculation is the audit breakdown carried on every reputation change.
// TotalDelta is filled in by the ledger with the post-clamp applied delta.
type Calculation struct {
	Cube        *CubeContribution   `json:"cube,omitempty"`
	Issues      []IssueContribution `json:"issues,omitempty"`
	Score       float64             `json:"score"`
	TotalWeight float64             `json:"total_weight"`
	TotalDelta  float64             `json:"total_delta"`
}

// maxCubeDistance is the Euclidean diagonal of the cube (3 axes, range 20).
var maxCubeDistance = math.Sqrt(3 * AxisRange * AxisRange)

// AlignmentScore computes the normalized agreement between position a and
// position b, in [-1, 1]. Issue weights come from b's salience — when
// scoring a player against a slice, the slice is b, so the score reflects
// how well the player agrees with what the slice cares about. A degenerate
// pair with zero total weight scores 0 (neutral), never NaN.
func AlignmentScore(a, b PoliticalPosition) (float64, Calculation) {
	calc := Calculation{}

	// Cube: Euclidean distance normalized to [0,1], inverted to [-1,1].
	de := a.Cube.Economic - b.Cube.Economic
	da := a.Cube.Authority - b.Cube.Authority
	ds := a.Cube.Social - b.Cube.Social
	dist := math.Sqrt(de*de + da*da + ds*ds)
	cubeAgreement := 1 - 2*(dist/maxCubeDistance)
	calc.Cube = &CubeContribution{
		Distance:     dist,
		MaxDistance:  maxCubeDistance,
		Weight:       CubeWeight,
		Contribution: cubeAgreement,
	}

	weightedSum := CubeWeight * cubeAgreement
	totalWeight := CubeWeight

	for i := 0; i < NumIssues; i++ {
		w := b.Salience[i]
		agreement := 1 - math.Abs(a.Issues[i]-b.Issues[i])/AxisRange // [0,1]
		contribution := 2*agreement - 1                              // [-1,1]

		calc.Issues = append(calc.Issues, IssueContribution{
			Issue:        Issue(i),
			IssueName:    Issue(i).Name(),
			PlayerValue:  a.Issues[i],
			GroupValue:   b.Issues[i],
			Salience:     b.Salience[i],
			Weight:       w,
			Contribution: contribution,
		})

		weightedSum += w * contribution
		totalWeight += w
	}

	calc.TotalWeight = totalWeight
	if totalWeight == 0 {
		calc.Score = 0
		return 0, calc
	}

	score := weightedSum / totalWeight
	calc.Score = score
	return score, calc
}
