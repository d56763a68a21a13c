package appointment

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	PatientID uuid.UUID
	Status    string
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, providerID, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, providerID, id uuid.UUID) error
	List(ctx context.Context, providerID uuid.UUID, filter ListFilter, limit, offset int) ([]*Appointment, int, error)
	// PatientExists reports whether the patient belongs to the provider.
	PatientExists(ctx context.Context, providerID, patientID uuid.UUID) (bool, error)
}
