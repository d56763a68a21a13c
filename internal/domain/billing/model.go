package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusOverdue = "overdue"
)

var validStatuses = map[string]bool{
	StatusPaid:    true,
	StatusPending: true,
	StatusOverdue: true,
}

// PatientRef carries the joined patient name for invoice listings.
type PatientRef struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type Invoice struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	ProviderID    uuid.UUID   `db:"provider_id" json:"provider_id"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	Patient       *PatientRef `json:"patient,omitempty"`
	InvoiceNumber string      `db:"invoice_number" json:"invoice_number"`
	Amount        float64     `db:"amount" json:"amount"`
	PaidAmount    float64     `db:"paid_amount" json:"paid_amount"`
	Status        string      `db:"status" json:"status"`
	DueDate       time.Time   `db:"due_date" json:"due_date"`
	PaidAt        *time.Time  `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// Summary aggregates a provider's invoices. Revenue counts money actually
// received, not the invoiced amounts.
type Summary struct {
	TotalRevenue float64 `json:"total_revenue"`
	Pending      int     `json:"pending"`
	Overdue      int     `json:"overdue"`
	Count        int     `json:"count"`
}

func (i *Invoice) Validate() error {
	if i.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(i.InvoiceNumber) == "" {
		return fmt.Errorf("invoice_number is required")
	}
	if i.Amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}
	if i.PaidAmount < 0 {
		return fmt.Errorf("paid_amount cannot be negative")
	}
	if i.PaidAmount > i.Amount {
		return fmt.Errorf("paid_amount cannot exceed amount")
	}
	if i.Status == "" {
		i.Status = StatusPending
	}
	if !validStatuses[i.Status] {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if i.DueDate.IsZero() {
		return fmt.Errorf("due_date is required")
	}
	return nil
}
