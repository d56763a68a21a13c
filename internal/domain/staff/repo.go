package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	List(ctx context.Context, providerID uuid.UUID) ([]*Member, error)
}
