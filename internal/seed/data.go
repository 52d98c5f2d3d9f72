// Package seed provides the demo data every MedStock instance starts from.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medstock/m/domain"
)

const (
	OwnPharmacyOwnerID = "pharm1"
	OwnPHCOwnerID      = "phc1"
	MockUserUID        = "mock-user-123"
	MockUserPhone      = "+2348012345678"
)

// Data is the complete seed set.
type Data struct {
	Drugs             []domain.Drug
	PharmacyInventory []domain.PharmacyItem
	PHCInventory      []domain.PHCItem
	Patients          []domain.Patient
	Purchases         []domain.Purchase
	PublicPharmacies  []domain.PublicPharmacy
	Pharmacies        []domain.Pharmacy
	PHCs              []domain.PHC
	Facilities        []domain.OversightFacility
	Staff             []domain.Staff
	Settings          domain.Settings
}

// Load builds the seed set with timestamps relative to now.
func Load(now time.Time, logger *zap.Logger) (*Data, error) {
	drugs, err := LoadDrugs(strings.NewReader(drugMasterList), now.AddDate(0, -6, 0), logger)
	if err != nil {
		return nil, fmt.Errorf("seed.Load: %w", err)
	}

	return &Data{
		Drugs:             drugs,
		PharmacyInventory: pharmacyInventory(now),
		PHCInventory:      phcInventory(now),
		Patients:          patients(now),
		Purchases:         purchases(now),
		PublicPharmacies:  publicPharmacies(),
		Pharmacies:        pharmacies(now),
		PHCs:              phcs(now),
		Facilities:        facilities(now),
		Staff:             staff(now),
		Settings: domain.Settings{
			FacilityName:             "Ikeja Primary Health Centre",
			DefaultLowStockThreshold: domain.DefaultLowStockThreshold,
			ReceiptFooter:            "Thank you. Complete your full course of medication.",
		},
	}, nil
}

func pharmacyItem(drugID string, quantity, threshold int64, at time.Time) domain.PharmacyItem {
	item := domain.PharmacyItem{InventoryBase: domain.InventoryBase{
		InventoryID:       drugID,
		DrugRef:           domain.DrugRef(drugID),
		Quantity:          quantity,
		LowStockThreshold: threshold,
		LastUpdated:       at,
	}}
	item.Refresh()
	return item
}

func pharmacyInventory(now time.Time) []domain.PharmacyItem {
	at := now.Add(-48 * time.Hour)
	return []domain.PharmacyItem{
		pharmacyItem("paracetamol_500mg", 35, 10, at),
		pharmacyItem("amoxicillin_500mg", 8, 10, at),
		pharmacyItem("artemether_lumefantrine_20_120", 50, 15, at),
		pharmacyItem("metformin_500mg", 120, 20, at),
		pharmacyItem("amlodipine_5mg", 5, 10, at),
		pharmacyItem("ibuprofen_400mg", 60, 10, at),
		pharmacyItem("vitamin_c_100mg", 0, 10, at),
	}
}

func phcItem(drugID string, quantity, threshold int64, batch string, expiry, at time.Time) domain.PHCItem {
	item := domain.PHCItem{
		InventoryBase: domain.InventoryBase{
			InventoryID:       drugID,
			DrugRef:           drugID,
			Quantity:          quantity,
			LowStockThreshold: threshold,
			LastUpdated:       at,
		},
		BatchNumber: batch,
		ExpiryDate:  &expiry,
	}
	item.Refresh()
	return item
}

func phcInventory(now time.Time) []domain.PHCItem {
	at := now.Add(-24 * time.Hour)
	return []domain.PHCItem{
		phcItem("paracetamol_500mg", 100, 20, "PCM-2024-118", now.AddDate(1, 2, 0), at),
		phcItem("amoxicillin_500mg", 40, 15, "AMX-2024-031", now.AddDate(0, 8, 0), at),
		phcItem("ors_sachet", 25, 30, "ORS-2024-007", now.AddDate(0, 0, 20), at),
		phcItem("zinc_20mg", 12, 10, "ZNC-2024-044", now.AddDate(0, 10, 0), at),
		phcItem("artemether_lumefantrine_20_120", 30, 10, "ACT-2024-092", now.AddDate(0, 5, 0), at),
		phcItem("folic_acid_5mg", 80, 20, "FOL-2024-015", now.AddDate(1, 0, 0), at),
		phcItem("ferrous_sulphate_200mg", 9, 20, "FER-2024-063", now.AddDate(0, 0, 45), at),
		phcItem("cotrimoxazole_480mg", 0, 10, "CTX-2023-210", now.AddDate(0, 3, 0), at),
	}
}

func patients(now time.Time) []domain.Patient {
	return []domain.Patient{
		{
			ID: "patient1", Name: "Amina Bello", Phone: "+2348031234567", Age: 34,
			Gender: domain.GenderFemale, VisitCount: 2, Allergies: []string{"Penicillin"},
			Notes: "Antenatal follow-up", CreatedAt: now.AddDate(0, -3, 0),
		},
		{
			ID: "patient2", Name: "Chinedu Okafor", Phone: "+2348059876543", Age: 52,
			Gender: domain.GenderMale, MyMedxLinked: true, VisitCount: 5,
			Notes: "Hypertensive, on monthly review", CreatedAt: now.AddDate(0, -5, 0),
		},
		{
			ID: "patient3", Name: "Tolu Adeyemi", Phone: "+2348022223333", Age: 7,
			Gender: domain.GenderOther, VisitCount: 1, CreatedAt: now.AddDate(0, -1, 0),
		},
	}
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func purchases(now time.Time) []domain.Purchase {
	saleAt := now.Add(-26 * time.Hour)
	dispAt := now.Add(-50 * time.Hour)
	return []domain.Purchase{
		{
			ID: "sale_seed_1", TraceID: fmt.Sprintf("T-%d-PH", saleAt.UnixMilli()),
			OwnerType: domain.OwnerPharmacy, OwnerID: OwnPharmacyOwnerID, CustomerPhone: "+2348077771111",
			Items: []domain.LineItem{
				{InventoryID: "paracetamol_500mg", Quantity: 2, Price: price(500)},
				{InventoryID: "ibuprofen_400mg", Quantity: 1, Price: price(1200)},
			},
			TotalItems: 3, TotalAmount: decimal.NewFromInt(2200), CreatedAt: saleAt,
		},
		{
			ID: fmt.Sprintf("disp_%d", dispAt.UnixMilli()), TraceID: fmt.Sprintf("T-%d-PHC", dispAt.UnixMilli()),
			OwnerType: domain.OwnerPHC, OwnerID: OwnPHCOwnerID, PatientID: "patient2", CustomerPhone: "+2348059876543",
			Items: []domain.LineItem{
				{DrugID: "paracetamol_500mg", Quantity: 10},
			},
			TotalItems: 10, TotalAmount: decimal.Zero, CreatedAt: dispAt,
		},
	}
}

func publicPharmacies() []domain.PublicPharmacy {
	listings := []domain.PublicPharmacy{
		{
			ID: domain.PublicPharmacyID, Name: "MedStock Pharmacy Ikeja", Address: "12 Allen Avenue, Ikeja, Lagos",
			Phone: "+2348012345678", Location: domain.Point{Latitude: 6.6018, Longitude: 3.3515},
			Rating: 4.6, ReviewCount: 128, IsOpen: true, Hours: "8:00 AM - 10:00 PM",
			AvailableDrugs: domain.NewDrugSet(),
			Amenities:      domain.Amenities{Parking: true, Insurance: true, Delivery: true},
		},
		{
			ID: 2, Name: "HealthPlus Lekki", Address: "Admiralty Way, Lekki Phase 1, Lagos",
			Phone: "+2348098765432", Location: domain.Point{Latitude: 6.4474, Longitude: 3.4723},
			Rating: 4.3, ReviewCount: 86, IsOpen: true, Hours: "24 hours",
			AvailableDrugs: domain.NewDrugSet("Paracetamol", "Amoxicillin", "Omeprazole", "Salbutamol"),
			Amenities:      domain.Amenities{Parking: true, Insurance: true, DriveThrough: true, Open24Hours: true},
		},
		{
			ID: 3, Name: "Yaba Community Pharmacy", Address: "Herbert Macaulay Way, Yaba, Lagos",
			Phone: "+2348033334444", Location: domain.Point{Latitude: 6.5095, Longitude: 3.3711},
			Rating: 4.0, ReviewCount: 41, IsOpen: false, Hours: "9:00 AM - 6:00 PM",
			AvailableDrugs: domain.NewDrugSet("Paracetamol", "Artemether/Lumefantrine", "Metronidazole"),
			Amenities:      domain.Amenities{Delivery: true},
		},
		{
			ID: 4, Name: "Wuse Care Pharmacy", Address: "Aminu Kano Crescent, Wuse II, Abuja",
			Phone: "+2348055556666", Location: domain.Point{Latitude: 9.0765, Longitude: 7.4689},
			Rating: 4.8, ReviewCount: 203, IsOpen: true, Hours: "7:00 AM - 11:00 PM",
			AvailableDrugs: domain.NewDrugSet("Metformin", "Amlodipine", "Lisinopril", "Paracetamol"),
			Amenities:      domain.Amenities{Parking: true, Insurance: true, Delivery: true},
		},
	}
	for i := range listings {
		listings[i].TotalDrugs = listings[i].AvailableDrugs.Len()
	}
	return listings
}

func pharmacies(now time.Time) []domain.Pharmacy {
	return []domain.Pharmacy{
		{
			ID: domain.PublicPharmacyID, Name: "MedStock Pharmacy Ikeja", Address: "12 Allen Avenue, Ikeja, Lagos",
			Phone: "+2348012345678", Location: domain.Point{Latitude: 6.6018, Longitude: 3.3515},
			AdminIDs: []string{MockUserUID}, Verified: true, CreatedAt: now.AddDate(-1, 0, 0),
		},
	}
}

func phcs(now time.Time) []domain.PHC {
	return []domain.PHC{
		{
			ID: OwnPHCOwnerID, Name: "Ikeja Primary Health Centre", Address: "Obafemi Awolowo Way, Ikeja, Lagos",
			Phone: "+2348011112222", Location: domain.Point{Latitude: 6.5965, Longitude: 3.3421},
			StaffIDs: []string{"staff1", "staff2", "staff3"}, Verified: true, CreatedAt: now.AddDate(-2, 0, 0),
		},
	}
}

func facilities(now time.Time) []domain.OversightFacility {
	report := now.Add(-6 * time.Hour)
	return []domain.OversightFacility{
		{
			ID: OwnPHCOwnerID, Name: "Ikeja Primary Health Centre", Ward: "Alausa", LGA: "Ikeja", State: "Lagos",
			Address: "Obafemi Awolowo Way, Ikeja", Phone: "+2348011112222",
			Location: domain.Point{Latitude: 6.5965, Longitude: 3.3421}, Status: domain.FacilityActive,
			StockStatus: domain.StockUnknown, StaffCount: 3, PatientsServed: 0,
			InventoryValue: decimal.NewFromInt(450000), LastReportAt: report,
		},
		{
			ID: "phc2", Name: "Surulere PHC", Ward: "Itire", LGA: "Surulere", State: "Lagos",
			Address: "Itire Road, Surulere", Phone: "+2348011113333",
			Location: domain.Point{Latitude: 6.5059, Longitude: 3.3509}, Status: domain.FacilityActive,
			StockStatus: domain.StockLow, StaffCount: 6, PatientsServed: 1240,
			InventoryValue: decimal.NewFromInt(320000), LastReportAt: report,
		},
		{
			ID: "phc3", Name: "Ungogo PHC", Ward: "Rangaza", LGA: "Ungogo", State: "Kano",
			Address: "Rangaza Road, Ungogo", Phone: "+2348011114444",
			Location: domain.Point{Latitude: 12.0840, Longitude: 8.4960}, Status: domain.FacilityActive,
			StockStatus: domain.StockCritical, StaffCount: 4, PatientsServed: 2310,
			InventoryValue: decimal.NewFromInt(95000), LastReportAt: report,
		},
		{
			ID: "phc4", Name: "Garki Model PHC", Ward: "Garki", LGA: "AMAC", State: "FCT",
			Address: "Area 3, Garki", Phone: "+2348011115555",
			Location: domain.Point{Latitude: 9.0300, Longitude: 7.4890}, Status: domain.FacilityActive,
			StockStatus: domain.StockHealthy, StaffCount: 9, PatientsServed: 3105,
			InventoryValue: decimal.NewFromInt(780000), LastReportAt: report,
		},
		{
			ID: "phc5", Name: "Dala PHC", Ward: "Kabuwaya", LGA: "Dala", State: "Kano",
			Address: "Kabuwaya Quarters, Dala", Phone: "+2348011116666",
			Location: domain.Point{Latitude: 12.0090, Longitude: 8.5050}, Status: domain.FacilityInactive,
			StockStatus: domain.StockUnknown, StaffCount: 0, PatientsServed: 410,
			InventoryValue: decimal.Zero, LastReportAt: now.AddDate(0, -2, 0),
		},
	}
}

func staff(now time.Time) []domain.Staff {
	return []domain.Staff{
		{ID: "staff1", Name: "Ngozi Eze", Phone: "+2348041112222", Role: "Pharmacy Technician", CreatedAt: now.AddDate(-1, 0, 0)},
		{ID: "staff2", Name: "Ibrahim Musa", Phone: "+2348041113333", Role: "Nurse", CreatedAt: now.AddDate(-1, -2, 0)},
		{ID: "staff3", Name: "Funke Ajayi", Phone: "+2348041114444", Role: "Community Health Worker", CreatedAt: now.AddDate(0, -4, 0)},
	}
}
