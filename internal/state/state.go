// Package state is the single authoritative in-memory store behind the pharmacy,
// PHC, oversight and public directory features.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/inventory"
	"medstock/m/internal/seed"
)

// Option configures a State.
type Option func(*State)

func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// State owns every mutable collection. The mutex serialises mutations that
// touch more than one collection so they stay mutually consistent.
type State struct {
	mu sync.Mutex

	catalog  *Catalog
	pharmacy *inventory.PharmacyStore
	phc      *inventory.PHCStore

	patients   []domain.Patient
	history    []domain.Purchase
	public     []domain.PublicPharmacy
	pharmacies []domain.Pharmacy
	phcs       []domain.PHC
	facilities []domain.OversightFacility
	staff      []domain.Staff
	settings   domain.Settings

	now    func() time.Time
	logger *zap.Logger
}

// New seeds a State from data. The public listing of our own pharmacy is
// derived from the seeded pharmacy inventory.
func New(data *seed.Data, opts ...Option) *State {
	s := &State{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.catalog = NewCatalog(data.Drugs)
	storeOpts := []inventory.Option{inventory.WithClock(s.now), inventory.WithLogger(s.logger)}
	s.pharmacy = inventory.NewPharmacyStore(s.catalog, storeOpts...)
	s.phc = inventory.NewPHCStore(s.catalog, storeOpts...)

	s.patients = cloneAll(data.Patients)
	s.history = cloneAll(data.Purchases)
	s.pharmacies = cloneAll(data.Pharmacies)
	s.phcs = cloneAll(data.PHCs)
	s.facilities = append([]domain.OversightFacility(nil), data.Facilities...)
	s.staff = cloneAll(data.Staff)
	s.settings = data.Settings
	for _, p := range data.PublicPharmacies {
		s.public = append(s.public, p.Clone())
	}

	for _, item := range data.PHCInventory {
		s.phc.Put(item)
	}
	for _, item := range data.PharmacyInventory {
		s.AddToPharmacyInventory(item)
	}
	return s
}

func (s *State) Catalog() *Catalog                       { return s.catalog }
func (s *State) PharmacyStore() *inventory.PharmacyStore { return s.pharmacy }
func (s *State) PHCStore() *inventory.PHCStore           { return s.phc }
func (s *State) Now() time.Time                          { return s.now() }

// AddToPharmacyInventory inserts or overwrites item by inventory id and, when
// its drug resolves, syncs the public listing.
func (s *State) AddToPharmacyInventory(item domain.PharmacyItem) domain.PharmacyItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.pharmacy.Put(item)
	if drug, ok := s.catalog.Drug(stored.DrugRef); ok {
		s.syncLocked(drug.Name, stored.Quantity)
	}
	return stored
}

// AddToPHCInventory inserts or overwrites item. PHC stock is not listed publicly.
func (s *State) AddToPHCInventory(item domain.PHCItem) domain.PHCItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phc.Put(item)
}

// StockPharmacy sets the stock line for drugID through the role-scoped
// inventory and syncs the public listing.
func (s *State) StockPharmacy(drugID string, quantity int64, opts ...inventory.AddOption) domain.PharmacyItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.pharmacy.Add(drugID, quantity, opts...)
	if drug, ok := s.catalog.Drug(drugID); ok {
		s.syncLocked(drug.Name, item.Quantity)
	}
	return item
}

// StockPHC sets the PHC stock line for drugID, keeping batch and expiry.
func (s *State) StockPHC(drugID string, quantity int64, opts ...inventory.AddOption) domain.PHCItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phc.Add(drugID, quantity, opts...)
}

// UpdatePharmacyStock applies delta without clamping. The drug name used for
// the public sync is resolved from the item as it was before the write.
func (s *State) UpdatePharmacyStock(inventoryID string, delta int64) (domain.PharmacyItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePharmacyStockLocked(inventoryID, delta)
}

func (s *State) updatePharmacyStockLocked(inventoryID string, delta int64) (domain.PharmacyItem, bool) {
	current, ok := s.pharmacy.Get(inventoryID)
	if !ok {
		s.logger.Debug("pharmacy stock update skipped: unknown id", zap.String("inventory_id", inventoryID))
		return domain.PharmacyItem{}, false
	}
	newQty := current.Quantity + delta
	updated, _ := s.pharmacy.SetQuantity(inventoryID, newQty)

	if drug, ok := s.catalog.Drug(current.DrugRef); ok {
		s.syncLocked(drug.Name, newQty)
	}

	s.logger.Info("pharmacy stock updated",
		zap.String("inventory_id", inventoryID),
		zap.Int64("delta", delta),
		zap.Int64("quantity", newQty),
	)
	return updated, true
}

// UpdatePHCStock applies delta without clamping.
func (s *State) UpdatePHCStock(inventoryID string, delta int64) (domain.PHCItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phc.UpdateStock(inventoryID, delta)
}

// SyncToPublicPharmacy adds drugName to our public listing when newQuantity > 0
// and removes it otherwise.
func (s *State) SyncToPublicPharmacy(drugName string, newQuantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(drugName, newQuantity)
}

func (s *State) syncLocked(drugName string, newQuantity int64) {
	for i := range s.public {
		p := &s.public[i]
		if p.ID != domain.PublicPharmacyID {
			continue
		}
		if p.AvailableDrugs == nil {
			p.AvailableDrugs = domain.NewDrugSet()
		}
		if newQuantity > 0 {
			p.AvailableDrugs.Add(drugName)
		} else {
			p.AvailableDrugs.Remove(drugName)
		}
		p.TotalDrugs = p.AvailableDrugs.Len()
	}
}

// AddPatient prepends p so the newest patient comes first.
func (s *State) AddPatient(p domain.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = append([]domain.Patient{p.Clone()}, s.patients...)
}

// DispenseLine is one drug handed out at the PHC.
type DispenseLine struct {
	DrugID   string `json:"drug_id"`
	Quantity int64  `json:"qty"`
}

type DispenseInput struct {
	PatientID   string           `json:"patient_id"`
	Items       []DispenseLine   `json:"items"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// AddDispense records a PHC dispense at the head of the history, bumps the
// patient's visit count and links them, and decrements PHC stock clamped at
// zero. The inventory id of a dispensed drug is assumed to be its drug id.
func (s *State) AddDispense(in DispenseInput) domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ms := now.UnixMilli()

	lines := make([]domain.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, domain.LineItem{DrugID: it.DrugID, Quantity: it.Quantity})
	}

	total := decimal.Zero
	if in.TotalAmount != nil {
		total = *in.TotalAmount
	}

	record := domain.Purchase{
		ID:          fmt.Sprintf("disp_%d", ms),
		TraceID:     fmt.Sprintf("T-%d-PHC", ms),
		OwnerType:   domain.OwnerPHC,
		OwnerID:     seed.OwnPHCOwnerID,
		PatientID:   in.PatientID,
		Items:       lines,
		TotalItems:  domain.SumQuantities(lines),
		TotalAmount: total,
		CreatedAt:   now,
	}

	for i := range s.patients {
		if s.patients[i].ID != in.PatientID {
			continue
		}
		record.CustomerPhone = s.patients[i].Phone
		s.patients[i].VisitCount++
		s.patients[i].MyMedxLinked = true
		break
	}

	s.history = append([]domain.Purchase{record}, s.history...)

	for _, it := range in.Items {
		item, ok := s.phc.Get(it.DrugID)
		if !ok {
			s.logger.Debug("dispensed drug not stocked", zap.String("drug_id", it.DrugID))
			continue
		}
		s.phc.SetQuantity(it.DrugID, max(0, item.Quantity-it.Quantity))
	}

	s.logger.Info("dispense recorded",
		zap.String("purchase_id", record.ID),
		zap.String("patient_id", in.PatientID),
		zap.Int64("total_items", record.TotalItems),
	)
	return record.Clone()
}

// SaleLine is one priced pharmacy sale line.
type SaleLine struct {
	InventoryID string
	Quantity    int64
	Price       decimal.Decimal
}

// RecordPharmacySale checks stock for every line, then decrements each through
// the pharmacy stock update path and appends the purchase. Nothing is written
// when any line is short.
func (s *State) RecordPharmacySale(purchaseID, customerPhone string, sale []SaleLine) (domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	need := make(map[string]int64, len(sale))
	for _, l := range sale {
		need[l.InventoryID] += l.Quantity
	}
	for id, qty := range need {
		item, ok := s.pharmacy.Get(id)
		if !ok {
			return domain.Purchase{}, fmt.Errorf("%w: inventory %s", domain.ErrNotFound, id)
		}
		if item.Quantity < qty {
			return domain.Purchase{}, fmt.Errorf("%w: %s has %d, need %d", domain.ErrInsufficientStock, id, item.Quantity, qty)
		}
	}

	now := s.now()
	lines := make([]domain.LineItem, 0, len(sale))
	total := decimal.Zero
	for _, l := range sale {
		s.updatePharmacyStockLocked(l.InventoryID, -l.Quantity)
		p := l.Price
		lines = append(lines, domain.LineItem{InventoryID: l.InventoryID, Quantity: l.Quantity, Price: &p})
		total = total.Add(l.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}

	record := domain.Purchase{
		ID:            purchaseID,
		TraceID:       fmt.Sprintf("T-%d-PH", now.UnixMilli()),
		OwnerType:     domain.OwnerPharmacy,
		OwnerID:       seed.OwnPharmacyOwnerID,
		CustomerPhone: customerPhone,
		Items:         lines,
		TotalItems:    domain.SumQuantities(lines),
		TotalAmount:   total,
		CreatedAt:     now,
	}
	s.history = append([]domain.Purchase{record}, s.history...)
	return record.Clone(), nil
}
