package medication

import (
	"context"

	"github.com/google/uuid"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, providerID, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, providerID, id uuid.UUID) error
	List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Medication, int, error)
}

type InventoryRepository interface {
	// Upsert inserts or replaces the row keyed by (provider_id, medication_id,
	// location).
	Upsert(ctx context.Context, i *InventoryItem) error
	GetByMedication(ctx context.Context, providerID, medicationID uuid.UUID) ([]*InventoryItem, error)
	List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*InventoryItem, int, error)
}
