package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProviderID     uuid.UUID `db:"provider_id" json:"provider_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Date           time.Time `db:"date" json:"date"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	Type           string    `db:"type" json:"type"`
	DoctorAssigned *string   `db:"doctor_assigned" json:"doctor_assigned,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

var validTypes = map[string]bool{
	"consultation": true, "follow_up": true, "surgery": true, "lab_test": true,
}

var validStatuses = map[string]bool{
	"scheduled": true, "completed": true, "cancelled": true,
}

// Validate checks appointment fields before insert or update.
func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.Type == "" {
		a.Type = "consultation"
	}
	if !validTypes[a.Type] {
		return fmt.Errorf("invalid appointment type: %s", a.Type)
	}
	if a.Status == "" {
		a.Status = "scheduled"
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	return nil
}
