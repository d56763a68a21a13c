package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. Every patient belongs to exactly one
// provider; repository methods filter on provider_id so one clinic can never
// see another clinic's records.
type Patient struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	ProviderID        uuid.UUID         `db:"provider_id" json:"provider_id"`
	FirstName         string            `db:"first_name" json:"first_name"`
	LastName          string            `db:"last_name" json:"last_name"`
	Phone             *string           `db:"phone" json:"phone,omitempty"`
	Email             *string           `db:"email" json:"email,omitempty"`
	DateOfBirth       *time.Time        `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender            *string           `db:"gender" json:"gender,omitempty"`
	BloodGroup        *string           `db:"blood_group" json:"blood_group,omitempty"`
	Allergies         []string          `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions []string          `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	InsuranceProvider *string           `db:"insurance_provider" json:"insurance_provider,omitempty"`
	EmergencyContact  *EmergencyContact `db:"emergency_contact" json:"emergency_contact,omitempty"`
	Notes             *string           `db:"notes" json:"notes,omitempty"`
	PhotoURL          *string           `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// EmergencyContact is stored as a jsonb column.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

var validGenders = map[string]bool{
	"male": true, "female": true, "non_binary": true,
}

// Validate checks patient fields before insert or update.
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		return fmt.Errorf("invalid email: %s", *p.Email)
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	return nil
}
