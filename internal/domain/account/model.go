package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider is the tenant record: one row per clinic. Every other table in
// the system carries a provider_id foreign key back to it.
type Provider struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	SubscriptionPlan string    `db:"subscription_plan" json:"subscription_plan"`
	LogoURL          *string   `db:"logo_url" json:"logo_url,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// PublicProfile is the unauthenticated projection of a provider, served to
// booking pages.
type PublicProfile struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   *string   `json:"phone,omitempty"`
	LogoURL *string   `json:"logo_url,omitempty"`
}

func (p *Provider) Public() *PublicProfile {
	return &PublicProfile{ID: p.ID, Name: p.Name, Phone: p.Phone, LogoURL: p.LogoURL}
}

// User is a login account scoped to a provider. PasswordHash is never
// serialized.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProviderID   uuid.UUID  `db:"provider_id" json:"provider_id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

var validRoles = map[string]bool{
	"doctor": true, "pharmacy": true, "admin": true,
}

var validPlans = map[string]bool{
	"starter": true, "growth": true, "enterprise": true,
}

// Validate checks provider fields before insert or update.
func (p *Provider) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid email: %s", p.Email)
	}
	if p.SubscriptionPlan != "" && !validPlans[p.SubscriptionPlan] {
		return fmt.Errorf("invalid subscription plan: %s", p.SubscriptionPlan)
	}
	return nil
}

// Validate checks user fields before insert.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email: %s", u.Email)
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}
