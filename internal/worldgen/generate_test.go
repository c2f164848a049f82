package worldgen

import (
	"testing"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
)

func TestGenerateProducesValidCatalog(t *testing.T) {
	cat, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatal(err)
	}

	// 6 provinces × 28 archetypes × 2 genders.
	if cat.Len() != 336 {
		t.Fatalf("slices = %d, want 336", cat.Len())
	}
	if cat.TotalPopulation() <= 0 {
		t.Fatal("world has no population")
	}
	if cat.EligiblePopulation() >= cat.TotalPopulation() {
		t.Fatal("everyone is enfranchised, franchise rules not applied")
	}

	provinces := make(map[string]bool)
	for _, s := range cat.All() {
		if err := s.Validate(); err != nil {
			t.Fatal(err)
		}
		provinces[s.Province] = true
	}
	if len(provinces) != 6 {
		t.Fatalf("provinces = %d, want 6", len(provinces))
	}
}

func TestGenerateFranchiseExcludesWomen(t *testing.T) {
	cat, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range cat.All() {
		if s.Gender == demographics.GenderFemale && s.CanVote {
			t.Fatalf("slice %s: women could not vote in the 1850s colonies", s.ID)
		}
		if s.CanVote && !s.OwnsProperty && s.Class == demographics.ClassLower {
			t.Fatalf("slice %s: propertyless lower-class slice enfranchised", s.ID)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, sa := range a.All() {
		sb, ok := b.Get(sa.ID)
		if !ok {
			t.Fatalf("slice %s missing on regeneration", sa.ID)
		}
		if sa.Population != sb.Population {
			t.Fatalf("slice %s: population %d vs %d for same seed", sa.ID, sa.Population, sb.Population)
		}
		if sa.DefaultPosition.Cube != sb.DefaultPosition.Cube {
			t.Fatalf("slice %s: cube differs for same seed", sa.ID)
		}
	}
}

func TestGenerateSeedChangesWorld(t *testing.T) {
	cfg := SmallTestConfig()
	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Seed = 777
	b, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}

	diff := 0
	for _, sa := range a.All() {
		sb, _ := b.Get(sa.ID)
		if sa.DefaultPosition.Cube != sb.DefaultPosition.Cube {
			diff++
		}
	}
	if diff == 0 {
		t.Fatal("different seeds produced identical baselines")
	}
}

func TestGenerateScaleShrinksPopulation(t *testing.T) {
	big, err := Generate(DefaultGenConfig())
	if err != nil {
		t.Fatal(err)
	}
	small, err := Generate(SmallTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	if small.TotalPopulation() >= big.TotalPopulation() {
		t.Fatalf("scale 0.1 world (%d) not smaller than full world (%d)",
			small.TotalPopulation(), big.TotalPopulation())
	}
}
