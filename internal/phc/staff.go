package phc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medstock/m/domain"
	"medstock/m/internal/format"
)

const (
	minPINLength = 4
	maxPINLength = 6
)

func (s *Service) Staff(ctx context.Context) ([]domain.Staff, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	return s.st.Staff(), nil
}

type StaffInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
	PIN   string `json:"pin"`
}

// AddStaff registers a staff member with a hashed dispensing PIN.
func (s *Service) AddStaff(ctx context.Context, in StaffInput) (domain.Staff, error) {
	const op = "phc.Service.AddStaff"
	if err := s.latency.Wait(ctx); err != nil {
		return domain.Staff{}, err
	}

	name := strings.TrimSpace(in.Name)
	role := strings.TrimSpace(in.Role)
	if name == "" || role == "" {
		return domain.Staff{}, errors.Join(domain.ErrValidation, errors.New("name and role are required"))
	}
	if !validPIN(in.PIN) {
		return domain.Staff{}, errors.Join(domain.ErrValidation, fmt.Errorf("pin must be %d to %d digits", minPINLength, maxPINLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.PIN), s.pinCost)
	if err != nil {
		return domain.Staff{}, fmt.Errorf("%s: hash pin: %w", op, err)
	}

	st := domain.Staff{
		ID:        s.newID(),
		Name:      name,
		Role:      role,
		PINHash:   hash,
		CreatedAt: s.st.Now(),
	}
	if strings.TrimSpace(in.Phone) != "" {
		st.Phone = format.Phone(in.Phone)
	}
	s.st.AddStaff(st)

	s.logger.Info("staff added", zap.String("staff_id", st.ID), zap.String("role", role))
	return st, nil
}

// VerifyStaffPIN checks a staff member's PIN before a dispense is confirmed.
func (s *Service) VerifyStaffPIN(ctx context.Context, staffID, pin string) error {
	const op = "phc.Service.VerifyStaffPIN"
	if err := s.latency.Wait(ctx); err != nil {
		return err
	}

	st, ok := s.st.StaffMember(staffID)
	if !ok {
		return fmt.Errorf("%s: %w: staff %s", op, domain.ErrNotFound, staffID)
	}
	if len(st.PINHash) == 0 || bcrypt.CompareHashAndPassword(st.PINHash, []byte(pin)) != nil {
		s.logger.Warn("staff pin rejected", zap.String("staff_id", staffID))
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidPIN)
	}
	return nil
}

func validPIN(pin string) bool {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return domain.Settings{}, err
	}
	return s.st.Settings(), nil
}

func (s *Service) UpdateSettings(ctx context.Context, in domain.Settings) (domain.Settings, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return domain.Settings{}, err
	}
	in.FacilityName = strings.TrimSpace(in.FacilityName)
	if in.FacilityName == "" {
		return domain.Settings{}, errors.Join(domain.ErrValidation, errors.New("facility_name is required"))
	}
	if in.DefaultLowStockThreshold < 0 {
		return domain.Settings{}, errors.Join(domain.ErrValidation, errors.New("default_low_stock_threshold must not be negative"))
	}
	return s.st.UpdateSettings(in), nil
}
