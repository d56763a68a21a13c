package medication

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medications table: the clinic's drug catalog.
type Medication struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProviderID   uuid.UUID  `db:"provider_id" json:"provider_id"`
	Name         string     `db:"name" json:"name"`
	Category     *string    `db:"category" json:"category,omitempty"`
	Supplier     *string    `db:"supplier" json:"supplier,omitempty"`
	Stock        int        `db:"stock" json:"stock"`
	Price        float64    `db:"price" json:"price"`
	CostPrice    *float64   `db:"cost_price" json:"cost_price,omitempty"`
	SellingPrice *float64   `db:"selling_price" json:"selling_price,omitempty"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	SKU          *string    `db:"sku" json:"sku,omitempty"`
	Unit         *string    `db:"unit" json:"unit,omitempty"`
	Description  *string    `db:"description" json:"description,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// InventoryItem tracks stock for one medication at one location.
type InventoryItem struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ProviderID       uuid.UUID  `db:"provider_id" json:"provider_id"`
	MedicationID     uuid.UUID  `db:"medication_id" json:"medication_id"`
	QuantityOnHand   int        `db:"quantity_on_hand" json:"quantity_on_hand"`
	ReservedQuantity int        `db:"reserved_quantity" json:"reserved_quantity"`
	ReorderLevel     int        `db:"reorder_level" json:"reorder_level"`
	ReorderQuantity  int        `db:"reorder_quantity" json:"reorder_quantity"`
	Location         *string    `db:"location" json:"location,omitempty"`
	BatchNumber      *string    `db:"batch_number" json:"batch_number,omitempty"`
	ExpiryDate       *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	LastRestockedAt  *time.Time `db:"last_restocked_at" json:"last_restocked_at,omitempty"`
	Status           string     `db:"status" json:"status"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Inventory status values, derived from quantity vs reorder level on write.
const (
	StatusInStock    = "in_stock"
	StatusLowStock   = "low_stock"
	StatusOutOfStock = "out_of_stock"
)

// DeriveStatus recomputes the status field from current quantities.
func (i *InventoryItem) DeriveStatus() {
	available := i.QuantityOnHand - i.ReservedQuantity
	switch {
	case available <= 0:
		i.Status = StatusOutOfStock
	case available <= i.ReorderLevel:
		i.Status = StatusLowStock
	default:
		i.Status = StatusInStock
	}
}

// Validate checks medication fields before insert or update.
func (m *Medication) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	if m.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// Validate checks inventory fields before upsert.
func (i *InventoryItem) Validate() error {
	if i.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if i.QuantityOnHand < 0 {
		return fmt.Errorf("quantity_on_hand cannot be negative")
	}
	if i.ReservedQuantity < 0 {
		return fmt.Errorf("reserved_quantity cannot be negative")
	}
	if i.ReorderLevel < 0 {
		return fmt.Errorf("reorder_level cannot be negative")
	}
	return nil
}
