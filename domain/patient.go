package domain

import (
	"slices"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Patient is a person served by a PHC. MyMedxLinked marks a link to the consumer-facing identity system.
type Patient struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Age          int       `json:"age"`
	Gender       Gender    `json:"gender"`
	MyMedxLinked bool      `json:"my_medx_linked"`
	VisitCount   int       `json:"visit_count"`
	Notes        string    `json:"notes,omitempty"`
	Allergies    []string  `json:"allergies,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Clone returns a copy that shares no mutable state with p.
func (p Patient) Clone() Patient {
	p.Allergies = slices.Clone(p.Allergies)
	return p
}
