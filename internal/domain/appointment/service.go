package appointment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	appointments Repository
}

func NewService(appointments Repository) *Service {
	return &Service{appointments: appointments}
}

// ensurePatientOwnership verifies the patient belongs to the provider before
// an appointment references it. A patient owned by another clinic reads the
// same as a nonexistent one.
func (s *Service) ensurePatientOwnership(ctx context.Context, providerID, patientID uuid.UUID) error {
	ok, err := s.appointments.PatientExists(ctx, providerID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.ensurePatientOwnership(ctx, a.ProviderID, a.PatientID); err != nil {
		return err
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, providerID, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, providerID, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	// Repointing to a different patient re-runs the ownership check.
	if err := s.ensurePatientOwnership(ctx, a.ProviderID, a.PatientID); err != nil {
		return err
	}
	return s.appointments.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	return s.appointments.Delete(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, providerID uuid.UUID, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, providerID, filter, limit, offset)
}
