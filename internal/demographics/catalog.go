package demographics

import (
	"fmt"
	"sort"
)

// Catalog is the read-side view of the world's demographic slices. The
// simulation engine resolves slice IDs through it; mutation happens only
// at worldgen time or through GM adjustment, before a Catalog is handed to
// the engine.
type Catalog struct {
	byID  map[SliceID]*DemographicSlice
	order []SliceID
}

// NewCatalog builds a catalog from generated slices. Duplicate IDs and
// invariant violations are rejected.
func NewCatalog(slices []*DemographicSlice) (*Catalog, error) {
	c := &Catalog{byID: make(map[SliceID]*DemographicSlice, len(slices))}
	for _, s := range slices {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate slice id %s", s.ID)
		}
		c.byID[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	return c, nil
}

// Get returns the slice with the given ID, or false if unknown.
func (c *Catalog) Get(id SliceID) (*DemographicSlice, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// All returns every slice in insertion order.
func (c *Catalog) All() []*DemographicSlice {
	out := make([]*DemographicSlice, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs returns all slice IDs sorted lexically.
func (c *Catalog) IDs() []SliceID {
	ids := make([]SliceID, len(c.order))
	copy(ids, c.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of slices.
func (c *Catalog) Len() int {
	return len(c.order)
}

// InProvince returns all slices located in the given province.
func (c *Catalog) InProvince(province string) []*DemographicSlice {
	var out []*DemographicSlice
	for _, id := range c.order {
		if s := c.byID[id]; s.Province == province {
			out = append(out, s)
		}
	}
	return out
}

// TotalPopulation sums the population of every slice.
func (c *Catalog) TotalPopulation() int64 {
	var total int64
	for _, s := range c.byID {
		total += s.Population
	}
	return total
}

// EligiblePopulation sums the population of voting-eligible slices.
func (c *Catalog) EligiblePopulation() int64 {
	var total int64
	for _, s := range c.byID {
		if s.CanVote {
			total += s.Population
		}
	}
	return total
}
