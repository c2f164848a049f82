// Package demographics provides the population slice model — the static
// identity, population, and baseline political position of each segment of
// the simulated population.
package demographics

import (
	"fmt"

	"github.com/NathanielJL/polsim-sub000/internal/politics"
)

// SliceID is the unique identifier of a demographic slice.
type SliceID string

// Class is the economic class of a slice.
type Class uint8

const (
	ClassUpper Class = iota
	ClassMiddle
	ClassLower
	ClassOther
)

var classNames = [...]string{"Upper", "Middle", "Lower", "Other"}

// Name returns the display name of a class.
func (c Class) Name() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Unknown"
}

// Occupation is the primary economic activity of a slice.
type Occupation uint8

const (
	OccPastoralist Occupation = iota
	OccFarmer
	OccFarmLabourer
	OccShepherd
	OccDrover
	OccMiner
	OccProspector
	OccMerchant
	OccShopkeeper
	OccClerk
	OccBanker
	OccLawyer
	OccDoctor
	OccClergyman
	OccTeacher
	OccJournalist
	OccArtisan
	OccBlacksmith
	OccCarpenter
	OccMason
	OccDockWorker
	OccSailor
	OccSoldier
	OccPoliceman
	OccServant
	OccPublican
	OccFisherman
	OccLabourer
)

// NumOccupations is the size of the fixed occupation set.
const NumOccupations = 28

var occupationNames = [NumOccupations]string{
	"Pastoralist", "Farmer", "Farm Labourer", "Shepherd", "Drover",
	"Miner", "Prospector", "Merchant", "Shopkeeper", "Clerk",
	"Banker", "Lawyer", "Doctor", "Clergyman", "Teacher",
	"Journalist", "Artisan", "Blacksmith", "Carpenter", "Mason",
	"Dock Worker", "Sailor", "Soldier", "Policeman", "Servant",
	"Publican", "Fisherman", "Labourer",
}

// Name returns the display name of an occupation.
func (o Occupation) Name() string {
	if int(o) < len(occupationNames) {
		return occupationNames[o]
	}
	return fmt.Sprintf("Occupation#%d", o)
}

// Gender of a slice.
type Gender uint8

const (
	GenderMale Gender = iota
	GenderFemale
)

var genderNames = [...]string{"Male", "Female"}

// Name returns the display name of a gender.
func (g Gender) Name() string {
	if int(g) < len(genderNames) {
		return genderNames[g]
	}
	return "Unknown"
}

// SpecialInterest is an affiliation with a cause or association, weighted
// by how much the slice cares about it.
type SpecialInterest struct {
	Name     string  `json:"name"`
	Salience float64 `json:"salience"` // [0,1]
}

// DemographicSlice is an immutable-except-by-GM population segment. The
// engine only reads it; creation and adjustment are worldgen/GM concerns.
type DemographicSlice struct {
	ID SliceID `json:"id"`

	// Economic identity.
	Class        Class      `json:"class"`
	Occupation   Occupation `json:"occupation"`
	Gender       Gender     `json:"gender"`
	OwnsProperty bool       `json:"owns_property"`

	// Cultural identity.
	Ethnicity  string `json:"ethnicity"`
	Religion   string `json:"religion"`
	Indigenous bool   `json:"indigenous"`
	Mixed      bool   `json:"mixed"`

	// Locational identity.
	Province    string `json:"province"`
	Urban       bool   `json:"urban"`
	UrbanCenter string `json:"urban_center,omitempty"`

	Interests []SpecialInterest `json:"interests,omitempty"`

	Population int64 `json:"population"`
	CanVote    bool  `json:"can_vote"`

	DefaultPosition politics.PoliticalPosition `json:"default_position"`
}

// Validate checks the slice invariants: non-negative population, bounded
// interest saliences, and a valid default position.
func (d *DemographicSlice) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("slice has empty id")
	}
	if d.Population < 0 {
		return fmt.Errorf("slice %s: population %d is negative", d.ID, d.Population)
	}
	for _, in := range d.Interests {
		if in.Salience < 0 || in.Salience > 1 {
			return fmt.Errorf("slice %s: interest %q salience %.2f outside [0,1]", d.ID, in.Name, in.Salience)
		}
	}
	if err := d.DefaultPosition.Validate(); err != nil {
		return fmt.Errorf("slice %s: %w", d.ID, err)
	}
	return nil
}
