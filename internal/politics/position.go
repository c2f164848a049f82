// Package politics provides the political position model — the 3-axis cube,
// the fixed issue set, and per-issue salience — plus the alignment
// comparator used everywhere reputation deltas depend on similarity.
package politics

import (
	"fmt"
	"log/slog"
)

// Issue identifies one of the fixed political issues of the era.
type Issue uint8

const (
	IssueTaxes Issue = iota
	IssueTariffs
	IssueLandReform
	IssueSuffrage
	IssueSecretBallot
	IssuePropertyFranchise
	IssueFemaleSuffrage
	IssueLabourRights
	IssuePoorRelief
	IssuePublicWorks
	IssueRailways
	IssueTelegraphs
	IssueMiningLicences
	IssueBankingRegulation
	IssueColonialAutonomy
	IssueChurchAndState
	IssueStateSchooling
	IssueTemperance
	IssueSabbathObservance
	IssueGambling
	IssueImmigration
	IssueAssistedMigration
	IssueIndigenousPolicy
	IssueConvictTransportation
	IssueMilitarySpending
	IssuePolicePowers
	IssuePressFreedom
	IssuePrisonReform
	IssuePublicHealth
	IssueIrrigation
	IssueTenantRights
	IssueSquatterLeases
	IssueCivilService
	IssueJudicialReform
)

// NumIssues is the size of the fixed issue set.
const NumIssues = 34

// AxisMin and AxisMax bound every cube axis and issue position.
const (
	AxisMin = -10.0
	AxisMax = 10.0
)

// AxisRange is the full span of one axis or issue.
const AxisRange = AxisMax - AxisMin

// SalienceSoftCap is the soft target for the sum of issue saliences. It is
// documentation-only: validation logs when exceeded but never rejects.
const SalienceSoftCap = 10.0

var issueNames = [NumIssues]string{
	"Taxes", "Tariffs", "Land Reform", "Suffrage", "Secret Ballot",
	"Property Franchise", "Female Suffrage", "Labour Rights", "Poor Relief",
	"Public Works", "Railways", "Telegraphs", "Mining Licences",
	"Banking Regulation", "Colonial Autonomy", "Church and State",
	"State Schooling", "Temperance", "Sabbath Observance", "Gambling",
	"Immigration", "Assisted Migration", "Indigenous Policy",
	"Convict Transportation", "Military Spending", "Police Powers",
	"Press Freedom", "Prison Reform", "Public Health", "Irrigation",
	"Tenant Rights", "Squatter Leases", "Civil Service", "Judicial Reform",
}

// Name returns the display name of an issue.
func (i Issue) Name() string {
	if int(i) < len(issueNames) {
		return issueNames[i]
	}
	return fmt.Sprintf("Issue#%d", i)
}

// Cube is the coarse 3-axis political position. Each axis runs -10 to +10:
// economic (laissez-faire to interventionist), authority (libertarian to
// authoritarian), social (traditional to progressive).
type Cube struct {
	Economic  float64 `json:"economic"`
	Authority float64 `json:"authority"`
	Social    float64 `json:"social"`
}

// PoliticalPosition is a political fingerprint usable for players,
// policies, or demographic slices.
type PoliticalPosition struct {
	Cube     Cube                 `json:"cube"`
	Issues   [NumIssues]float64   `json:"issues"`
	Salience [NumIssues]float64   `json:"salience"`
}

// Validate checks that every axis, issue, and salience is inside its
// bounded range. Salience sums above the soft cap are logged, not errors.
func (p PoliticalPosition) Validate() error {
	for _, axis := range [...]struct {
		name string
		v    float64
	}{
		{"economic", p.Cube.Economic},
		{"authority", p.Cube.Authority},
		{"social", p.Cube.Social},
	} {
		if axis.v < AxisMin || axis.v > AxisMax {
			return fmt.Errorf("cube axis %s = %.2f outside [%g, %g]", axis.name, axis.v, AxisMin, AxisMax)
		}
	}

	salienceSum := 0.0
	for i := 0; i < NumIssues; i++ {
		if p.Issues[i] < AxisMin || p.Issues[i] > AxisMax {
			return fmt.Errorf("issue %q = %.2f outside [%g, %g]", Issue(i).Name(), p.Issues[i], AxisMin, AxisMax)
		}
		if p.Salience[i] < 0 || p.Salience[i] > 1 {
			return fmt.Errorf("salience for %q = %.2f outside [0, 1]", Issue(i).Name(), p.Salience[i])
		}
		salienceSum += p.Salience[i]
	}

	if salienceSum > SalienceSoftCap {
		slog.Debug("salience sum exceeds soft cap", "sum", salienceSum, "cap", SalienceSoftCap)
	}
	return nil
}

// ClampAxis pins a value to the axis range.
func ClampAxis(v float64) float64 {
	if v < AxisMin {
		return AxisMin
	}
	if v > AxisMax {
		return AxisMax
	}
	return v
}

// ClampSalience pins a value to [0, 1].
func ClampSalience(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
