package demographics

import "testing"

func testSlice(id SliceID, province string, pop int64, canVote bool) *DemographicSlice {
	return &DemographicSlice{
		ID:         id,
		Class:      ClassLower,
		Occupation: OccLabourer,
		Gender:     GenderMale,
		Province:   province,
		Population: pop,
		CanVote:    canVote,
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]*DemographicSlice{
		testSlice("a", "Victoria", 100, true),
		testSlice("a", "Victoria", 200, false),
	})
	if err == nil {
		t.Fatal("duplicate slice id should be rejected")
	}
}

func TestNewCatalogRejectsInvalidSlice(t *testing.T) {
	bad := testSlice("a", "Victoria", -5, true)
	if _, err := NewCatalog([]*DemographicSlice{bad}); err == nil {
		t.Fatal("negative population should be rejected")
	}
}

func TestCatalogTotals(t *testing.T) {
	cat, err := NewCatalog([]*DemographicSlice{
		testSlice("a", "Victoria", 100, true),
		testSlice("b", "Victoria", 200, false),
		testSlice("c", "New South Wales", 50, true),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := cat.TotalPopulation(); got != 350 {
		t.Fatalf("TotalPopulation = %d, want 350", got)
	}
	if got := cat.EligiblePopulation(); got != 150 {
		t.Fatalf("EligiblePopulation = %d, want 150", got)
	}
	if got := len(cat.InProvince("Victoria")); got != 2 {
		t.Fatalf("InProvince(Victoria) = %d slices, want 2", got)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cat.Len())
	}

	if _, ok := cat.Get("b"); !ok {
		t.Fatal("Get(b) should find the slice")
	}
	if _, ok := cat.Get("nope"); ok {
		t.Fatal("Get(nope) should not find anything")
	}

	ids := cat.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs not sorted: %v", ids)
		}
	}
}
