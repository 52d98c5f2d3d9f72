package domain

import (
	"encoding/json"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PublicPharmacyID is the storefront kept in sync with our own pharmacy inventory.
const PublicPharmacyID int64 = 1

// Pharmacy is a retail pharmacy facility.
type Pharmacy struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Location  Point `json:"location"`
	AdminIDs  []string  `json:"admin_ids"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Pharmacy) Clone() Pharmacy {
	p.AdminIDs = slices.Clone(p.AdminIDs)
	return p
}

// PHC is a primary health center facility.
type PHC struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Location  Point `json:"location"`
	StaffIDs  []string  `json:"staff_ids"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func (p PHC) Clone() PHC {
	p.StaffIDs = slices.Clone(p.StaffIDs)
	return p
}

type Amenities struct {
	Parking      bool `json:"parking"`
	Insurance    bool `json:"insurance"`
	Delivery     bool `json:"delivery"`
	DriveThrough bool `json:"drive_through"`
	Open24Hours  bool `json:"open_24_hours"`
}

// Covers reports whether a offers every amenity requested in want.
func (a Amenities) Covers(want Amenities) bool {
	return (!want.Parking || a.Parking) &&
		(!want.Insurance || a.Insurance) &&
		(!want.Delivery || a.Delivery) &&
		(!want.DriveThrough || a.DriveThrough) &&
		(!want.Open24Hours || a.Open24Hours)
}

// PublicPharmacy is the consumer search listing of a pharmacy.
// TotalDrugs equals AvailableDrugs.Len() after every sync.
type PublicPharmacy struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Location       Point `json:"location"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"review_count"`
	IsOpen         bool      `json:"is_open"`
	Hours          string    `json:"hours"`
	AvailableDrugs DrugSet   `json:"available_drugs"`
	TotalDrugs     int       `json:"total_drugs"`
	Amenities      Amenities `json:"amenities"`
}

// Clone returns a copy that shares no mutable state with p.
func (p PublicPharmacy) Clone() PublicPharmacy {
	p.AvailableDrugs = p.AvailableDrugs.Clone()
	return p
}

// DrugSet is a set of drug display names.
type DrugSet map[string]struct{}

func NewDrugSet(names ...string) DrugSet {
	s := make(DrugSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s DrugSet) Add(name string)    { s[name] = struct{}{} }
func (s DrugSet) Remove(name string) { delete(s, name) }
func (s DrugSet) Len() int           { return len(s) }

func (s DrugSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s DrugSet) Clone() DrugSet {
	out := make(DrugSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Sorted returns the names in lexical order.
func (s DrugSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s DrugSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *DrugSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewDrugSet(names...)
	return nil
}

type FacilityStatus string

const (
	FacilityActive   FacilityStatus = "Active"
	FacilityInactive FacilityStatus = "Inactive"
)

type StockStatus string

const (
	StockHealthy  StockStatus = "Healthy"
	StockLow      StockStatus = "Low"
	StockCritical StockStatus = "Critical"
	StockUnknown  StockStatus = "Unknown"
)

// OversightFacility is a PHC as seen from the oversight dashboard.
type OversightFacility struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Ward           string          `json:"ward"`
	LGA            string          `json:"lga"`
	State          string          `json:"state"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	Location       Point       `json:"location"`
	Status         FacilityStatus  `json:"status"`
	StockStatus    StockStatus     `json:"stock_status"`
	StaffCount     int             `json:"staff_count"`
	PatientsServed int             `json:"patients_served"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	LastReportAt   time.Time       `json:"last_report_at"`
}
