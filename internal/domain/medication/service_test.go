package medication

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockMedRepo struct {
	items map[uuid.UUID]*Medication
}

func newMockMedRepo() *mockMedRepo {
	return &mockMedRepo{items: make(map[uuid.UUID]*Medication)}
}

func (m *mockMedRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	m.items[med.ID] = med
	return nil
}

func (m *mockMedRepo) GetByID(_ context.Context, providerID, id uuid.UUID) (*Medication, error) {
	med, ok := m.items[id]
	if !ok || med.ProviderID != providerID {
		return nil, pgx.ErrNoRows
	}
	return med, nil
}

func (m *mockMedRepo) Update(_ context.Context, med *Medication) error {
	existing, ok := m.items[med.ID]
	if !ok || existing.ProviderID != med.ProviderID {
		return pgx.ErrNoRows
	}
	m.items[med.ID] = med
	return nil
}

func (m *mockMedRepo) Delete(_ context.Context, providerID, id uuid.UUID) error {
	med, ok := m.items[id]
	if !ok || med.ProviderID != providerID {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockMedRepo) List(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.items {
		if med.ProviderID == providerID {
			result = append(result, med)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, len(result), nil
}

type invKey struct {
	medicationID uuid.UUID
	location     string
}

type mockInvRepo struct {
	items map[invKey]*InventoryItem
}

func newMockInvRepo() *mockInvRepo {
	return &mockInvRepo{items: make(map[invKey]*InventoryItem)}
}

func (m *mockInvRepo) Upsert(_ context.Context, i *InventoryItem) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	loc := ""
	if i.Location != nil {
		loc = *i.Location
	}
	m.items[invKey{i.MedicationID, loc}] = i
	return nil
}

func (m *mockInvRepo) GetByMedication(_ context.Context, providerID, medicationID uuid.UUID) ([]*InventoryItem, error) {
	var result []*InventoryItem
	for _, i := range m.items {
		if i.ProviderID == providerID && i.MedicationID == medicationID {
			result = append(result, i)
		}
	}
	return result, nil
}

func (m *mockInvRepo) List(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*InventoryItem, int, error) {
	var result []*InventoryItem
	for _, i := range m.items {
		if i.ProviderID == providerID {
			result = append(result, i)
		}
	}
	return result, len(result), nil
}

func newTestService() (*Service, *mockMedRepo, *mockInvRepo) {
	meds := newMockMedRepo()
	inv := newMockInvRepo()
	return NewService(meds, inv), meds, inv
}

func seedMedication(t *testing.T, svc *Service, providerID uuid.UUID, name string) *Medication {
	t.Helper()
	m := &Medication{ProviderID: providerID, Name: name, Stock: 10, Price: 4.50, IsActive: true}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("seed medication: %v", err)
	}
	return m
}

func TestCreate_Validates(t *testing.T) {
	svc, _, _ := newTestService()
	providerID := uuid.New()

	cases := []struct {
		name string
		med  Medication
	}{
		{"empty name", Medication{ProviderID: providerID, Name: "  "}},
		{"negative stock", Medication{ProviderID: providerID, Name: "Aspirin", Stock: -1}},
		{"negative price", Medication{ProviderID: providerID, Name: "Aspirin", Price: -0.01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), &tc.med); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGet_OtherProviderNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	providerID := uuid.New()
	med := seedMedication(t, svc, providerID, "Amoxicillin")

	if _, err := svc.Get(context.Background(), uuid.New(), med.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("want pgx.ErrNoRows, got %v", err)
	}
	if _, err := svc.Get(context.Background(), providerID, med.ID); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
}

func TestList_ScopedToProvider(t *testing.T) {
	svc, _, _ := newTestService()
	mine := uuid.New()
	other := uuid.New()
	seedMedication(t, svc, mine, "Aspirin")
	seedMedication(t, svc, mine, "Ibuprofen")
	seedMedication(t, svc, other, "Paracetamol")

	items, total, err := svc.List(context.Background(), mine, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("want 2 medications, got total=%d len=%d", total, len(items))
	}
	for _, m := range items {
		if m.ProviderID != mine {
			t.Fatalf("leaked medication from provider %s", m.ProviderID)
		}
	}
}

func TestUpsertInventory_DerivesStatus(t *testing.T) {
	svc, _, _ := newTestService()
	providerID := uuid.New()
	med := seedMedication(t, svc, providerID, "Metformin")

	cases := []struct {
		name       string
		onHand     int
		reserved   int
		reorderAt  int
		wantStatus string
	}{
		{"plenty on hand", 100, 10, 20, StatusInStock},
		{"at reorder level", 30, 10, 20, StatusLowStock},
		{"below reorder level", 15, 0, 20, StatusLowStock},
		{"everything reserved", 10, 10, 5, StatusOutOfStock},
		{"nothing on hand", 0, 0, 5, StatusOutOfStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := &InventoryItem{
				ProviderID:       providerID,
				MedicationID:     med.ID,
				QuantityOnHand:   tc.onHand,
				ReservedQuantity: tc.reserved,
				ReorderLevel:     tc.reorderAt,
				Status:           "bogus", // service must overwrite whatever the client sent
			}
			if err := svc.UpsertInventory(context.Background(), item); err != nil {
				t.Fatalf("upsert: %v", err)
			}
			if item.Status != tc.wantStatus {
				t.Fatalf("want status %s, got %s", tc.wantStatus, item.Status)
			}
		})
	}
}

func TestUpsertInventory_RejectsUnknownMedication(t *testing.T) {
	svc, _, _ := newTestService()
	providerID := uuid.New()

	item := &InventoryItem{ProviderID: providerID, MedicationID: uuid.New(), QuantityOnHand: 5}
	if err := svc.UpsertInventory(context.Background(), item); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("want pgx.ErrNoRows for unknown medication, got %v", err)
	}
}

func TestUpsertInventory_RejectsCrossProviderMedication(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	med := seedMedication(t, svc, owner, "Lisinopril")

	item := &InventoryItem{ProviderID: uuid.New(), MedicationID: med.ID, QuantityOnHand: 5}
	if err := svc.UpsertInventory(context.Background(), item); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("want pgx.ErrNoRows for cross-provider medication, got %v", err)
	}
}

func TestUpsertInventory_Validates(t *testing.T) {
	svc, _, _ := newTestService()
	providerID := uuid.New()
	med := seedMedication(t, svc, providerID, "Atorvastatin")

	cases := []struct {
		name string
		item InventoryItem
	}{
		{"missing medication", InventoryItem{ProviderID: providerID, QuantityOnHand: 5}},
		{"negative on hand", InventoryItem{ProviderID: providerID, MedicationID: med.ID, QuantityOnHand: -1}},
		{"negative reserved", InventoryItem{ProviderID: providerID, MedicationID: med.ID, ReservedQuantity: -1}},
		{"negative reorder level", InventoryItem{ProviderID: providerID, MedicationID: med.ID, ReorderLevel: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.UpsertInventory(context.Background(), &tc.item); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestInventoryForMedication_EmptyNotNil(t *testing.T) {
	svc, _, _ := newTestService()
	providerID := uuid.New()
	med := seedMedication(t, svc, providerID, "Omeprazole")

	items, err := svc.InventoryForMedication(context.Background(), providerID, med.ID)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if items == nil {
		t.Fatal("want empty slice, got nil")
	}
	if len(items) != 0 {
		t.Fatalf("want no items, got %d", len(items))
	}
}

func TestUpdate_CrossProviderNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()
	med := seedMedication(t, svc, owner, "Sertraline")

	stolen := *med
	stolen.ProviderID = uuid.New()
	if err := svc.Update(context.Background(), &stolen); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("want pgx.ErrNoRows, got %v", err)
	}
}
