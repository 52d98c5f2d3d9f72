// Package inventory keeps one role's stock lines keyed by inventory id.
package inventory

import (
	"iter"
	"sync"
	"time"

	"go.uber.org/zap"

	"medstock/m/domain"
)

// UnknownDrugName is reported for items whose drug cannot be resolved.
const UnknownDrugName = "Unknown"

// DrugLookup resolves drug reference data by id.
type DrugLookup interface {
	Drug(id string) (domain.Drug, bool)
}

// Entry constrains the pointer type of an inventory variant.
type Entry[E any] interface {
	*E
	Stock() *domain.InventoryBase
}

// Detail joins an inventory item with its drug's display data.
type Detail[E any] struct {
	Item       E      `json:"item"`
	DrugName   string `json:"drug_name"`
	Strength   string `json:"strength,omitempty"`
	DosageForm string `json:"dosage_form,omitempty"`
}

type addOptions struct {
	threshold   int64
	expiry      *time.Time
	batchNumber string
}

// AddOption customises Add.
type AddOption func(*addOptions)

func WithThreshold(threshold int64) AddOption {
	return func(o *addOptions) { o.threshold = threshold }
}

// WithExpiry is honoured by PHC stores only.
func WithExpiry(expiry time.Time) AddOption {
	return func(o *addOptions) { o.expiry = &expiry }
}

// WithBatch is honoured by PHC stores only.
func WithBatch(batchNumber string) AddOption {
	return func(o *addOptions) { o.batchNumber = batchNumber }
}

// Option configures a Store.
type Option func(*config)

type config struct {
	now    func() time.Time
	logger *zap.Logger
}

func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Store is an in-memory inventory for a single role.
type Store[E any, P Entry[E]] struct {
	mu    sync.RWMutex
	items map[string]E
	order []string

	drugs  DrugLookup
	build  func(drugID string, base domain.InventoryBase, o addOptions) E
	now    func() time.Time
	logger *zap.Logger
}

type (
	PharmacyStore = Store[domain.PharmacyItem, *domain.PharmacyItem]
	PHCStore      = Store[domain.PHCItem, *domain.PHCItem]
)

// NewPharmacyStore references drugs by "drugMasterList/<id>" and never stores batch or expiry.
func NewPharmacyStore(drugs DrugLookup, opts ...Option) *PharmacyStore {
	return newStore[domain.PharmacyItem, *domain.PharmacyItem](drugs,
		func(drugID string, base domain.InventoryBase, _ addOptions) domain.PharmacyItem {
			base.DrugRef = domain.DrugRef(drugID)
			return domain.PharmacyItem{InventoryBase: base}
		}, opts...)
}

// NewPHCStore references drugs by plain id and keeps batch and expiry.
func NewPHCStore(drugs DrugLookup, opts ...Option) *PHCStore {
	return newStore[domain.PHCItem, *domain.PHCItem](drugs,
		func(drugID string, base domain.InventoryBase, o addOptions) domain.PHCItem {
			base.DrugRef = drugID
			return domain.PHCItem{
				InventoryBase: base,
				BatchNumber:   o.batchNumber,
				ExpiryDate:    o.expiry,
			}
		}, opts...)
}

func newStore[E any, P Entry[E]](
	drugs DrugLookup,
	build func(string, domain.InventoryBase, addOptions) E,
	opts ...Option,
) *Store[E, P] {
	cfg := config{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[E, P]{
		items:  make(map[string]E),
		drugs:  drugs,
		build:  build,
		now:    cfg.now,
		logger: cfg.logger,
	}
}

// Add inserts or overwrites the line for drugID. The inventory id is the drug id.
// Quantities are not validated here.
func (s *Store[E, P]) Add(drugID string, quantity int64, opts ...AddOption) E {
	o := addOptions{threshold: domain.DefaultLowStockThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	base := domain.InventoryBase{
		InventoryID:       drugID,
		Quantity:          quantity,
		LowStockThreshold: o.threshold,
		LastUpdated:       s.now(),
	}
	base.Refresh()
	item := s.build(drugID, base, o)

	s.mu.Lock()
	s.putLocked(item)
	s.mu.Unlock()

	s.logger.Info("inventory item added",
		zap.String("inventory_id", drugID),
		zap.Int64("quantity", quantity),
		zap.Int64("threshold", o.threshold),
	)
	return item
}

// Put inserts or overwrites item by its inventory id, recomputing the low-stock alert.
func (s *Store[E, P]) Put(item E) E {
	base := P(&item).Stock()
	if base.LastUpdated.IsZero() {
		base.LastUpdated = s.now()
	}
	base.Refresh()

	s.mu.Lock()
	s.putLocked(item)
	s.mu.Unlock()
	return item
}

// UpdateStock adds delta to the quantity. Missing ids are a no-op. The result is not clamped.
func (s *Store[E, P]) UpdateStock(inventoryID string, delta int64) (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[inventoryID]
	if !ok {
		s.logger.Debug("inventory update skipped: unknown id", zap.String("inventory_id", inventoryID))
		var zero E
		return zero, false
	}
	base := P(&item).Stock()
	base.SetQuantity(base.Quantity+delta, s.now())
	s.items[inventoryID] = item
	return item, true
}

// SetQuantity overwrites the quantity of an existing line. Missing ids are a no-op.
func (s *Store[E, P]) SetQuantity(inventoryID string, quantity int64) (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[inventoryID]
	if !ok {
		var zero E
		return zero, false
	}
	P(&item).Stock().SetQuantity(quantity, s.now())
	s.items[inventoryID] = item
	return item, true
}

func (s *Store[E, P]) Get(inventoryID string) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[inventoryID]
	return item, ok
}

// List returns the items in insertion order.
func (s *Store[E, P]) List() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]E, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *Store[E, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// WithDetails lazily joins every item with its drug. Each range over the
// returned sequence starts from a fresh snapshot.
func (s *Store[E, P]) WithDetails() iter.Seq[Detail[E]] {
	return func(yield func(Detail[E]) bool) {
		for _, item := range s.List() {
			if !yield(s.detail(item)) {
				return
			}
		}
	}
}

// DrugName resolves the display name of item, falling back to UnknownDrugName.
func (s *Store[E, P]) DrugName(item E) string {
	return s.detail(item).DrugName
}

func (s *Store[E, P]) detail(item E) Detail[E] {
	d := Detail[E]{Item: item, DrugName: UnknownDrugName}
	if s.drugs == nil {
		return d
	}
	if drug, ok := s.drugs.Drug(P(&item).Stock().DrugID()); ok {
		d.DrugName = drug.Name
		d.Strength = drug.Strength
		d.DosageForm = drug.DosageForm
	}
	return d
}

func (s *Store[E, P]) putLocked(item E) {
	id := P(&item).Stock().InventoryID
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}
