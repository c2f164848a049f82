package events

import (
	"testing"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
)

// testCatalog builds a three-slice catalog with distinct baselines.
func testCatalog(t *testing.T) *demographics.Catalog {
	t.Helper()

	miners := &demographics.DemographicSlice{
		ID: "vic-miners", Class: demographics.ClassLower,
		Occupation: demographics.OccMiner, Gender: demographics.GenderMale,
		Province: "Victoria", Population: 5000, CanVote: true,
		DefaultPosition: politics.PoliticalPosition{
			Cube: politics.Cube{Economic: 6, Authority: -5, Social: 3},
		},
	}
	miners.DefaultPosition.Issues[politics.IssueMiningLicences] = -8
	miners.DefaultPosition.Salience[politics.IssueMiningLicences] = 0.9

	squatters := &demographics.DemographicSlice{
		ID: "nsw-squatters", Class: demographics.ClassUpper,
		Occupation: demographics.OccPastoralist, Gender: demographics.GenderMale,
		Province: "New South Wales", Population: 400, CanVote: true,
		DefaultPosition: politics.PoliticalPosition{
			Cube: politics.Cube{Economic: -8, Authority: 5, Social: -7},
		},
	}

	servants := &demographics.DemographicSlice{
		ID: "vic-servants", Class: demographics.ClassLower,
		Occupation: demographics.OccServant, Gender: demographics.GenderFemale,
		Province: "Victoria", Population: 3000, CanVote: false,
	}

	cat, err := demographics.NewCatalog([]*demographics.DemographicSlice{miners, squatters, servants})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}
