package staff

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validRoles = map[string]bool{
	"doctor":     true,
	"nurse":      true,
	"admin":      true,
	"pharmacist": true,
}

// Member is a directory entry, not a login account. Accounts able to
// authenticate live in the account package.
type Member struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProviderID    uuid.UUID `db:"provider_id" json:"provider_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Email         string    `db:"email" json:"email"`
	Role          string    `db:"role" json:"role"`
	Permissions   []string  `db:"permissions" json:"permissions"`
	ActivityScore int       `db:"activity_score" json:"activity_score"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (m *Member) Validate() error {
	if strings.TrimSpace(m.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if !strings.Contains(m.Email, "@") {
		return fmt.Errorf("invalid email: %s", m.Email)
	}
	if !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	if m.ActivityScore < 0 || m.ActivityScore > 100 {
		return fmt.Errorf("activity_score must be between 0 and 100")
	}
	return nil
}
