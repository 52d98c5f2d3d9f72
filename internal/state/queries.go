package state

import (
	"medstock/m/domain"
	"medstock/m/internal/seed"
)

// Patients returns the patients, newest first.
func (s *State) Patients() []domain.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.patients)
}

func (s *State) Patient(id string) (domain.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Patient{}, false
}

// History returns purchase and dispense records, newest first.
func (s *State) History() []domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.history)
}

// PublicPharmacies returns copies of the public listings.
func (s *State) PublicPharmacies() []domain.PublicPharmacy {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PublicPharmacy, 0, len(s.public))
	for _, p := range s.public {
		out = append(out, p.Clone())
	}
	return out
}

func (s *State) PublicPharmacy(id int64) (domain.PublicPharmacy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.public {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.PublicPharmacy{}, false
}

func (s *State) Pharmacies() []domain.Pharmacy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.pharmacies)
}

func (s *State) PHCs() []domain.PHC {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.phcs)
}

func (s *State) Facilities() []domain.OversightFacility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OversightFacility(nil), s.facilities...)
}

func (s *State) Staff() []domain.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.staff)
}

func (s *State) StaffMember(id string) (domain.Staff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.staff {
		if st.ID == id {
			return st.Clone(), true
		}
	}
	return domain.Staff{}, false
}

// AddStaff appends a staff member and lists them on our PHC.
func (s *State) AddStaff(st domain.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append(s.staff, st.Clone())
	for i := range s.phcs {
		if s.phcs[i].ID == seed.OwnPHCOwnerID {
			s.phcs[i].StaffIDs = append(s.phcs[i].StaffIDs, st.ID)
		}
	}
}

func (s *State) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *State) UpdateSettings(settings domain.Settings) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.settings
}

func cloneAll[T interface{ Clone() T }](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, v.Clone())
	}
	return out
}
