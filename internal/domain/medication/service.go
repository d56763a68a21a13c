package medication

import (
	"context"

	"github.com/google/uuid"
)

// Service exposes medication catalog and stock inventory operations.
// Inventory status is recomputed from the quantities on every write so
// reads never depend on stale derived state.
type Service struct {
	meds      MedicationRepository
	inventory InventoryRepository
}

func NewService(meds MedicationRepository, inventory InventoryRepository) *Service {
	return &Service{meds: meds, inventory: inventory}
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.meds.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, providerID, id uuid.UUID) (*Medication, error) {
	return s.meds.GetByID(ctx, providerID, id)
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.meds.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	return s.meds.Delete(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	return s.meds.List(ctx, providerID, limit, offset)
}

// UpsertInventory records a stock level for a medication at a location.
// The medication must belong to the same provider, and the item status is
// derived from the submitted quantities before persisting.
func (s *Service) UpsertInventory(ctx context.Context, i *InventoryItem) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if _, err := s.meds.GetByID(ctx, i.ProviderID, i.MedicationID); err != nil {
		return err
	}
	i.DeriveStatus()
	return s.inventory.Upsert(ctx, i)
}

func (s *Service) InventoryForMedication(ctx context.Context, providerID, medicationID uuid.UUID) ([]*InventoryItem, error) {
	if _, err := s.meds.GetByID(ctx, providerID, medicationID); err != nil {
		return nil, err
	}
	items, err := s.inventory.GetByMedication(ctx, providerID, medicationID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*InventoryItem{}
	}
	return items, nil
}

func (s *Service) ListInventory(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*InventoryItem, int, error) {
	return s.inventory.List(ctx, providerID, limit, offset)
}
