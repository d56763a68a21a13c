package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository methods all take the acting principal's providerID; lookups for
// records owned by a different provider report pgx.ErrNoRows.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, providerID, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, providerID, id uuid.UUID) error
	List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Patient, int, error)
}
