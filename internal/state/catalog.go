package state

import (
	"sort"

	"medstock/m/domain"
)

// Catalog is the read-only drug master list.
type Catalog struct {
	byID   map[string]domain.Drug
	sorted []domain.Drug
}

func NewCatalog(drugs []domain.Drug) *Catalog {
	c := &Catalog{byID: make(map[string]domain.Drug, len(drugs))}
	for _, d := range drugs {
		c.byID[d.ID] = d
	}
	c.sorted = make([]domain.Drug, 0, len(c.byID))
	for _, d := range c.byID {
		c.sorted = append(c.sorted, d)
	}
	sort.Slice(c.sorted, func(i, j int) bool {
		if c.sorted[i].Name == c.sorted[j].Name {
			return c.sorted[i].ID < c.sorted[j].ID
		}
		return c.sorted[i].Name < c.sorted[j].Name
	})
	return c
}

func (c *Catalog) Drug(id string) (domain.Drug, bool) {
	d, ok := c.byID[domain.DrugIDFromRef(id)]
	return d, ok
}

// Drugs returns the master list ordered by name.
func (c *Catalog) Drugs() []domain.Drug {
	out := make([]domain.Drug, len(c.sorted))
	copy(out, c.sorted)
	return out
}

// Search returns drugs whose name or keywords contain query, ordered by name.
func (c *Catalog) Search(query string) []domain.Drug {
	var out []domain.Drug
	for _, d := range c.sorted {
		if d.Matches(query) {
			out = append(out, d)
		}
	}
	return out
}
