// Package phc serves the primary health center workflows: patients, stock,
// dispensing, staff and facility settings. Every call goes through the
// latency simulator so callers see the timing of a real backend.
package phc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medstock/m/domain"
	"medstock/m/internal/format"
	"medstock/m/internal/inventory"
	"medstock/m/internal/latency"
	"medstock/m/internal/state"
)

const maxPatientAge = 150

type Service struct {
	st      *state.State
	latency *latency.Simulator
	logger  *zap.Logger
	newID   func() string
	pinCost int
}

// Option configures a Service.
type Option func(*Service)

// WithPINCost sets the bcrypt cost used for staff PINs.
func WithPINCost(cost int) Option {
	return func(s *Service) { s.pinCost = cost }
}

func NewService(st *state.State, lat *latency.Simulator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		st:      st,
		latency: lat,
		logger:  logger,
		newID:   uuid.NewString,
		pinCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Patients lists patients newest first, filtered by a case-insensitive match on name or phone.
func (s *Service) Patients(ctx context.Context, query string) ([]domain.Patient, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	patients := s.st.Patients()
	if q == "" {
		return patients, nil
	}
	return lo.Filter(patients, func(p domain.Patient, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(p.Phone, q)
	}), nil
}

func (s *Service) Patient(ctx context.Context, id string) (domain.Patient, error) {
	const op = "phc.Service.Patient"
	if err := s.latency.Wait(ctx); err != nil {
		return domain.Patient{}, err
	}
	p, ok := s.st.Patient(id)
	if !ok {
		return domain.Patient{}, fmt.Errorf("%s: %w: patient %s", op, domain.ErrNotFound, id)
	}
	return p, nil
}

type PatientInput struct {
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Age       int           `json:"age"`
	Gender    domain.Gender `json:"gender"`
	Notes     string        `json:"notes,omitempty"`
	Allergies []string      `json:"allergies,omitempty"`
}

// CreatePatient registers a patient at the head of the list.
func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (domain.Patient, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return domain.Patient{}, err
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return domain.Patient{}, errors.Join(domain.ErrValidation, errors.New("name is required"))
	case !in.Gender.Valid():
		return domain.Patient{}, errors.Join(domain.ErrValidation, errors.New("gender must be male, female or other"))
	case in.Age < 0 || in.Age > maxPatientAge:
		return domain.Patient{}, errors.Join(domain.ErrValidation, fmt.Errorf("age must be between 0 and %d", maxPatientAge))
	}

	p := domain.Patient{
		ID:        s.newID(),
		Name:      name,
		Age:       in.Age,
		Gender:    in.Gender,
		Notes:     strings.TrimSpace(in.Notes),
		Allergies: lo.Compact(lo.Map(in.Allergies, func(a string, _ int) string { return strings.TrimSpace(a) })),
		CreatedAt: s.st.Now(),
	}
	if strings.TrimSpace(in.Phone) != "" {
		p.Phone = format.Phone(in.Phone)
	}
	s.st.AddPatient(p)

	s.logger.Info("patient registered", zap.String("patient_id", p.ID))
	return p, nil
}

// Inventory lists PHC stock with drug details.
func (s *Service) Inventory(ctx context.Context) ([]inventory.Detail[domain.PHCItem], error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return slices.Collect(s.st.PHCStore().WithDetails()), nil
}

// Masterlist returns the drug master list ordered by name.
func (s *Service) Masterlist(ctx context.Context, query string) ([]domain.Drug, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return s.st.Catalog().Search(query), nil
}

type RestockInput struct {
	DrugID      string     `json:"drug_id"`
	Quantity    int64      `json:"quantity"`
	Threshold   *int64     `json:"low_stock_threshold,omitempty"`
	BatchNumber string     `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
}

// Restock sets the stock line of a drug. Without an explicit threshold the
// facility default applies.
func (s *Service) Restock(ctx context.Context, in RestockInput) (domain.PHCItem, error) {
	const op = "phc.Service.Restock"
	if err := s.latency.Wait(ctx); err != nil {
		return domain.PHCItem{}, err
	}

	in.DrugID = strings.TrimSpace(in.DrugID)
	if in.DrugID == "" || in.Quantity <= 0 {
		return domain.PHCItem{}, errors.Join(domain.ErrValidation, errors.New("drug_id and a positive quantity are required"))
	}
	if _, ok := s.st.Catalog().Drug(in.DrugID); !ok {
		return domain.PHCItem{}, fmt.Errorf("%s: %w: drug %s", op, domain.ErrNotFound, in.DrugID)
	}

	threshold := s.st.Settings().DefaultLowStockThreshold
	if in.Threshold != nil {
		if *in.Threshold < 0 {
			return domain.PHCItem{}, errors.Join(domain.ErrValidation, errors.New("low_stock_threshold must not be negative"))
		}
		threshold = *in.Threshold
	}

	opts := []inventory.AddOption{inventory.WithThreshold(threshold)}
	if b := strings.TrimSpace(in.BatchNumber); b != "" {
		opts = append(opts, inventory.WithBatch(b))
	}
	if in.ExpiryDate != nil {
		opts = append(opts, inventory.WithExpiry(*in.ExpiryDate))
	}
	item := s.st.StockPHC(in.DrugID, in.Quantity, opts...)

	s.logger.Info("phc restocked", zap.String("drug_id", in.DrugID), zap.Int64("quantity", in.Quantity))
	return item, nil
}

// ExpiringSoon lists stock lines expiring within the window, soonest first.
func (s *Service) ExpiringSoon(ctx context.Context, within time.Duration) ([]domain.PHCItem, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	now := s.st.Now()
	items := lo.Filter(s.st.PHCStore().List(), func(it domain.PHCItem, _ int) bool {
		return it.ExpiresWithin(now, within)
	})
	slices.SortFunc(items, func(a, b domain.PHCItem) int {
		return a.ExpiryDate.Compare(*b.ExpiryDate)
	})
	return items, nil
}

// Dispense records medication handed to a registered patient.
func (s *Service) Dispense(ctx context.Context, in state.DispenseInput) (domain.Purchase, error) {
	const op = "phc.Service.Dispense"
	if err := s.latency.Wait(ctx); err != nil {
		return domain.Purchase{}, err
	}

	if len(in.Items) == 0 {
		return domain.Purchase{}, errors.Join(domain.ErrValidation, errors.New("at least one item is required"))
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.DrugID) == "" || it.Quantity <= 0 {
			return domain.Purchase{}, errors.Join(domain.ErrValidation, errors.New("drug_id and a positive qty are required for each item"))
		}
	}
	if in.TotalAmount != nil && in.TotalAmount.LessThan(decimal.Zero) {
		return domain.Purchase{}, errors.Join(domain.ErrValidation, errors.New("total_amount must not be negative"))
	}
	if _, ok := s.st.Patient(in.PatientID); !ok {
		return domain.Purchase{}, fmt.Errorf("%s: %w: patient %s", op, domain.ErrNotFound, in.PatientID)
	}

	return s.st.AddDispense(in), nil
}

// Dispenses lists PHC dispense records, newest first, optionally for one patient.
func (s *Service) Dispenses(ctx context.Context, patientID string) ([]domain.Purchase, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return lo.Filter(s.st.History(), func(p domain.Purchase, _ int) bool {
		return p.OwnerType == domain.OwnerPHC && (patientID == "" || p.PatientID == patientID)
	}), nil
}
