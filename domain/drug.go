package domain

import (
	"strings"
	"time"
)

// DrugRefPrefix is the collection path used by pharmacy inventory items to reference a drug.
const DrugRefPrefix = "drugMasterList/"

// Drug is an entry of the drug master list. Drugs are reference data and are never mutated after seeding.
type Drug struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Strength       string    `json:"strength"`
	DosageForm     string    `json:"dosage_form"`
	Category       string    `json:"category"`
	SearchName     string    `json:"search_name"`
	SearchKeywords []string  `json:"search_keywords"`
	CreatedAt      time.Time `json:"created_at"`
}

// DrugRef builds the composite reference "drugMasterList/<id>".
func DrugRef(drugID string) string {
	return DrugRefPrefix + drugID
}

// DrugIDFromRef accepts either a composite reference or a plain drug id.
func DrugIDFromRef(ref string) string {
	return strings.TrimPrefix(ref, DrugRefPrefix)
}

// Matches reports whether the drug name, search name or one of its keywords contains query.
func (d Drug) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(d.SearchName, q) {
		return true
	}
	for _, kw := range d.SearchKeywords {
		if strings.Contains(kw, q) {
			return true
		}
	}
	return false
}
