package patient

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, providerID, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, providerID, id)
}

// Update applies changes to an existing patient. The record is re-read under
// the caller's provider first, so a cross-tenant id surfaces as not found.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	return s.patients.Delete(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, providerID, limit, offset)
}
