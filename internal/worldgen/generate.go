// World generation using layered simplex noise. Instead of terrain, the
// noise layers drift each province's political temperament and population
// around the occupation archetype baselines, so two worlds with different
// seeds produce different but internally coherent electorates.
package worldgen

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Seed            int64   // Random seed (0 = random)
	PopulationScale float64 // Multiplier on every slice's population
	PositionDrift   float64 // Max noise displacement of a cube axis
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:            0,
		PopulationScale: 1.0,
		PositionDrift:   2.5,
	}
}

// SmallTestConfig returns a deterministic world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:            42,
		PopulationScale: 0.1,
		PositionDrift:   2.5,
	}
}

// province is a generation-time description of one colony.
type province struct {
	Name    string
	Code    string
	Capital string
	Weight  float64 // share of total population
	// Temperament offsets applied to every slice in the province.
	Econ, Auth, Social float64
}

var provinces = []province{
	{"New South Wales", "nsw", "Sydney", 1.00, 0.5, 1.0, -0.5},
	{"Victoria", "vic", "Melbourne", 0.90, -0.5, -0.5, 1.5},
	{"South Australia", "sa", "Adelaide", 0.35, -1.0, -1.5, 1.0},
	{"Van Diemen's Land", "vdl", "Hobart", 0.30, 1.0, 2.0, -2.0},
	{"Moreton Bay", "qld", "Brisbane", 0.20, 1.5, 1.0, -1.5},
	{"Swan River", "wa", "Perth", 0.15, 1.0, 1.5, -1.0},
}

// archetype is the generation baseline for one occupation.
type archetype struct {
	Occ      demographics.Occupation
	Class    demographics.Class
	Urban    bool
	Property bool    // typically meets the property franchise
	Weight   float64 // share of a province's population
	Female   float64 // fraction of the occupation that is female

	Cube politics.Cube
	Keys []politics.Issue // high-salience issues
}

var archetypes = []archetype{
	{demographics.OccPastoralist, demographics.ClassUpper, false, true, 0.02, 0.05,
		politics.Cube{Economic: -8, Authority: 5, Social: -7},
		[]politics.Issue{politics.IssueSquatterLeases, politics.IssueLandReform, politics.IssuePropertyFranchise, politics.IssueTaxes}},
	{demographics.OccFarmer, demographics.ClassMiddle, false, true, 0.09, 0.25,
		politics.Cube{Economic: -2, Authority: 1, Social: -3},
		[]politics.Issue{politics.IssueLandReform, politics.IssueIrrigation, politics.IssueRailways, politics.IssueTariffs}},
	{demographics.OccFarmLabourer, demographics.ClassLower, false, false, 0.08, 0.20,
		politics.Cube{Economic: 4, Authority: -2, Social: -1},
		[]politics.Issue{politics.IssueLandReform, politics.IssueTenantRights, politics.IssuePoorRelief, politics.IssueSuffrage}},
	{demographics.OccShepherd, demographics.ClassLower, false, false, 0.04, 0.02,
		politics.Cube{Economic: 3, Authority: -1, Social: -2},
		[]politics.Issue{politics.IssueSquatterLeases, politics.IssueLabourRights, politics.IssuePoorRelief}},
	{demographics.OccDrover, demographics.ClassLower, false, false, 0.02, 0.01,
		politics.Cube{Economic: 2, Authority: -4, Social: 0},
		[]politics.Issue{politics.IssueRailways, politics.IssueSquatterLeases, politics.IssuePolicePowers}},
	{demographics.OccMiner, demographics.ClassLower, false, false, 0.10, 0.03,
		politics.Cube{Economic: 6, Authority: -5, Social: 3},
		[]politics.Issue{politics.IssueMiningLicences, politics.IssueSuffrage, politics.IssueSecretBallot, politics.IssueLabourRights}},
	{demographics.OccProspector, demographics.ClassLower, false, false, 0.05, 0.02,
		politics.Cube{Economic: 1, Authority: -7, Social: 2},
		[]politics.Issue{politics.IssueMiningLicences, politics.IssuePolicePowers, politics.IssueGambling}},
	{demographics.OccMerchant, demographics.ClassUpper, true, true, 0.02, 0.05,
		politics.Cube{Economic: -7, Authority: 2, Social: 0},
		[]politics.Issue{politics.IssueTariffs, politics.IssueBankingRegulation, politics.IssueRailways, politics.IssueTelegraphs}},
	{demographics.OccShopkeeper, demographics.ClassMiddle, true, true, 0.04, 0.20,
		politics.Cube{Economic: -3, Authority: 1, Social: 0},
		[]politics.Issue{politics.IssueTaxes, politics.IssueTariffs, politics.IssueGambling}},
	{demographics.OccClerk, demographics.ClassMiddle, true, false, 0.04, 0.05,
		politics.Cube{Economic: -1, Authority: 1, Social: 1},
		[]politics.Issue{politics.IssueCivilService, politics.IssueStateSchooling, politics.IssuePropertyFranchise}},
	{demographics.OccBanker, demographics.ClassUpper, true, true, 0.01, 0.01,
		politics.Cube{Economic: -9, Authority: 4, Social: -3},
		[]politics.Issue{politics.IssueBankingRegulation, politics.IssueTaxes, politics.IssuePropertyFranchise}},
	{demographics.OccLawyer, demographics.ClassUpper, true, true, 0.01, 0.01,
		politics.Cube{Economic: -4, Authority: 2, Social: 1},
		[]politics.Issue{politics.IssueJudicialReform, politics.IssueColonialAutonomy, politics.IssueCivilService}},
	{demographics.OccDoctor, demographics.ClassUpper, true, true, 0.01, 0.02,
		politics.Cube{Economic: -2, Authority: 1, Social: 2},
		[]politics.Issue{politics.IssuePublicHealth, politics.IssueTemperance, politics.IssuePoorRelief}},
	{demographics.OccClergyman, demographics.ClassMiddle, true, false, 0.01, 0.0,
		politics.Cube{Economic: 0, Authority: 4, Social: -6},
		[]politics.Issue{politics.IssueChurchAndState, politics.IssueSabbathObservance, politics.IssueTemperance, politics.IssueStateSchooling}},
	{demographics.OccTeacher, demographics.ClassMiddle, true, false, 0.01, 0.40,
		politics.Cube{Economic: 2, Authority: 0, Social: 3},
		[]politics.Issue{politics.IssueStateSchooling, politics.IssueChurchAndState, politics.IssueCivilService}},
	{demographics.OccJournalist, demographics.ClassMiddle, true, false, 0.01, 0.05,
		politics.Cube{Economic: 1, Authority: -6, Social: 5},
		[]politics.Issue{politics.IssuePressFreedom, politics.IssueSuffrage, politics.IssueColonialAutonomy}},
	{demographics.OccArtisan, demographics.ClassMiddle, true, false, 0.05, 0.15,
		politics.Cube{Economic: 3, Authority: -2, Social: 2},
		[]politics.Issue{politics.IssueLabourRights, politics.IssueTariffs, politics.IssueSuffrage}},
	{demographics.OccBlacksmith, demographics.ClassMiddle, false, true, 0.02, 0.01,
		politics.Cube{Economic: 1, Authority: 0, Social: -1},
		[]politics.Issue{politics.IssueTariffs, politics.IssueRailways, politics.IssueLabourRights}},
	{demographics.OccCarpenter, demographics.ClassLower, true, false, 0.03, 0.01,
		politics.Cube{Economic: 3, Authority: -1, Social: 1},
		[]politics.Issue{politics.IssueLabourRights, politics.IssuePublicWorks, politics.IssueSuffrage}},
	{demographics.OccMason, demographics.ClassLower, true, false, 0.02, 0.0,
		politics.Cube{Economic: 3, Authority: -1, Social: 0},
		[]politics.Issue{politics.IssuePublicWorks, politics.IssueLabourRights}},
	{demographics.OccDockWorker, demographics.ClassLower, true, false, 0.03, 0.02,
		politics.Cube{Economic: 5, Authority: -3, Social: 2},
		[]politics.Issue{politics.IssueLabourRights, politics.IssueTariffs, politics.IssuePoorRelief}},
	{demographics.OccSailor, demographics.ClassLower, true, false, 0.02, 0.0,
		politics.Cube{Economic: 2, Authority: -4, Social: 1},
		[]politics.Issue{politics.IssueGambling, politics.IssueTemperance, politics.IssuePolicePowers}},
	{demographics.OccSoldier, demographics.ClassLower, true, false, 0.01, 0.0,
		politics.Cube{Economic: 0, Authority: 6, Social: -3},
		[]politics.Issue{politics.IssueMilitarySpending, politics.IssuePolicePowers, politics.IssueConvictTransportation}},
	{demographics.OccPoliceman, demographics.ClassLower, true, false, 0.01, 0.0,
		politics.Cube{Economic: 0, Authority: 7, Social: -2},
		[]politics.Issue{politics.IssuePolicePowers, politics.IssuePrisonReform, politics.IssueTemperance}},
	{demographics.OccServant, demographics.ClassLower, true, false, 0.07, 0.80,
		politics.Cube{Economic: 2, Authority: 2, Social: -1},
		[]politics.Issue{politics.IssuePoorRelief, politics.IssueAssistedMigration, politics.IssueFemaleSuffrage}},
	{demographics.OccPublican, demographics.ClassMiddle, true, true, 0.01, 0.25,
		politics.Cube{Economic: -2, Authority: -1, Social: 1},
		[]politics.Issue{politics.IssueTemperance, politics.IssueGambling, politics.IssueSabbathObservance}},
	{demographics.OccFisherman, demographics.ClassLower, false, false, 0.02, 0.02,
		politics.Cube{Economic: 1, Authority: -2, Social: -1},
		[]politics.Issue{politics.IssuePublicWorks, politics.IssueTaxes}},
	{demographics.OccLabourer, demographics.ClassLower, true, false, 0.12, 0.10,
		politics.Cube{Economic: 5, Authority: -2, Social: 1},
		[]politics.Issue{politics.IssuePoorRelief, politics.IssueLabourRights, politics.IssueSuffrage, politics.IssuePublicWorks}},
}

// issueAxis maps each issue to the cube axis that best predicts it, with a
// sign for direction. Used to derive issue positions from the cube so that
// generated slices are coherent instead of random across 34 dimensions.
var issueAxis = [politics.NumIssues]struct {
	axis int // 0 = economic, 1 = authority, 2 = social
	sign float64
}{
	politics.IssueTaxes:                 {0, 1},
	politics.IssueTariffs:               {0, 1},
	politics.IssueLandReform:            {0, 1},
	politics.IssueSuffrage:              {1, -1},
	politics.IssueSecretBallot:          {1, -1},
	politics.IssuePropertyFranchise:     {1, 1},
	politics.IssueFemaleSuffrage:        {2, 1},
	politics.IssueLabourRights:          {0, 1},
	politics.IssuePoorRelief:            {0, 1},
	politics.IssuePublicWorks:           {0, 1},
	politics.IssueRailways:              {0, 1},
	politics.IssueTelegraphs:            {0, 1},
	politics.IssueMiningLicences:        {1, -1},
	politics.IssueBankingRegulation:     {0, 1},
	politics.IssueColonialAutonomy:      {1, -1},
	politics.IssueChurchAndState:        {2, 1},
	politics.IssueStateSchooling:        {2, 1},
	politics.IssueTemperance:            {2, -1},
	politics.IssueSabbathObservance:     {2, -1},
	politics.IssueGambling:              {2, 1},
	politics.IssueImmigration:           {2, 1},
	politics.IssueAssistedMigration:     {0, 1},
	politics.IssueIndigenousPolicy:      {2, 1},
	politics.IssueConvictTransportation: {1, 1},
	politics.IssueMilitarySpending:      {1, 1},
	politics.IssuePolicePowers:          {1, 1},
	politics.IssuePressFreedom:          {1, -1},
	politics.IssuePrisonReform:          {2, 1},
	politics.IssuePublicHealth:          {0, 1},
	politics.IssueIrrigation:            {0, 1},
	politics.IssueTenantRights:          {0, 1},
	politics.IssueSquatterLeases:        {0, -1},
	politics.IssueCivilService:          {1, 1},
	politics.IssueJudicialReform:        {1, -1},
}

// basePopulation is the per-province population anchor before weights.
const basePopulation = 60000

// Generate builds the full slice catalog: every province crossed with
// every occupation archetype and gender, drifted by noise. Produces
// 6 × 28 × 2 = 336 slices.
func Generate(cfg GenConfig) (*demographics.Catalog, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent noise layers per concern.
	econNoise := opensimplex.NewNormalized(seed)
	authNoise := opensimplex.NewNormalized(seed + 1)
	socialNoise := opensimplex.NewNormalized(seed + 2)
	popNoise := opensimplex.NewNormalized(seed + 3)

	var slices []*demographics.DemographicSlice
	for pi, prov := range provinces {
		for ai, arch := range archetypes {
			// Sample noise at a stable (province, archetype) coordinate so
			// both genders of one occupation share a temperament.
			x, y := float64(pi)*1.7, float64(ai)*0.9
			drift := cfg.PositionDrift
			cube := politics.Cube{
				Economic:  politics.ClampAxis(arch.Cube.Economic + prov.Econ + (econNoise.Eval2(x, y)*2-1)*drift),
				Authority: politics.ClampAxis(arch.Cube.Authority + prov.Auth + (authNoise.Eval2(x, y)*2-1)*drift),
				Social:    politics.ClampAxis(arch.Cube.Social + prov.Social + (socialNoise.Eval2(x, y)*2-1)*drift),
			}

			pop := float64(basePopulation) * prov.Weight * arch.Weight * cfg.PopulationScale
			pop *= 0.7 + popNoise.Eval2(x, y)*0.6 // ±30% variation

			for _, gender := range []demographics.Gender{demographics.GenderMale, demographics.GenderFemale} {
				share := 1 - arch.Female
				if gender == demographics.GenderFemale {
					share = arch.Female
				}

				slice := &demographics.DemographicSlice{
					ID:              demographics.SliceID(sliceID(prov, arch, gender)),
					Class:           arch.Class,
					Occupation:      arch.Occ,
					Gender:          gender,
					OwnsProperty:    arch.Property,
					Ethnicity:       "British",
					Religion:        defaultReligion(prov, arch),
					Province:        prov.Name,
					Urban:           arch.Urban,
					Population:      int64(pop * share),
					CanVote:         franchise(arch, gender),
					DefaultPosition: buildPosition(cube, arch.Keys),
				}
				if arch.Urban {
					slice.UrbanCenter = prov.Capital
				}
				slices = append(slices, slice)
			}
		}
	}

	cat, err := demographics.NewCatalog(slices)
	if err != nil {
		return nil, fmt.Errorf("worldgen: %w", err)
	}
	return cat, nil
}

// franchise applies the era's voting rules: adult men of property or
// standing. Nobody else votes, whatever their numbers.
func franchise(arch archetype, gender demographics.Gender) bool {
	if gender != demographics.GenderMale {
		return false
	}
	return arch.Property || arch.Class == demographics.ClassUpper || arch.Class == demographics.ClassMiddle
}

// buildPosition derives the 34-issue profile from the cube, boosting
// salience on the archetype's key issues.
func buildPosition(cube politics.Cube, keys []politics.Issue) politics.PoliticalPosition {
	p := politics.PoliticalPosition{Cube: cube}
	axes := [3]float64{cube.Economic, cube.Authority, cube.Social}

	for i := 0; i < politics.NumIssues; i++ {
		m := issueAxis[i]
		p.Issues[i] = politics.ClampAxis(axes[m.axis] * m.sign * 0.8)
		p.Salience[i] = 0.05 // background interest in everything
	}
	for rank, issue := range keys {
		// First-listed key issues matter most.
		p.Salience[issue] = politics.ClampSalience(0.9 - 0.15*float64(rank))
	}
	return p
}

func sliceID(prov province, arch archetype, gender demographics.Gender) string {
	g := "m"
	if gender == demographics.GenderFemale {
		g = "f"
	}
	return fmt.Sprintf("%s-%02d-%s", prov.Code, int(arch.Occ), g)
}

func defaultReligion(prov province, arch archetype) string {
	if arch.Occ == demographics.OccClergyman {
		return "Church of England"
	}
	if prov.Code == "sa" {
		return "Nonconformist"
	}
	return "Church of England"
}
