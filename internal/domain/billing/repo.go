package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, providerID, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Invoice, int, error)
	// ListAll returns every invoice for the provider without the patient
	// join; used for summary aggregation.
	ListAll(ctx context.Context, providerID uuid.UUID) ([]*Invoice, error)
	PatientExists(ctx context.Context, providerID, patientID uuid.UUID) (bool, error)
}
