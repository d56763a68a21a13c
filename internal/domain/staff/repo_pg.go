package staff

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

func NewRepoPG(db queryable) Repository { return &repoPG{db: db} }

const memberCols = `id, provider_id, full_name, email, role, permissions,
	activity_score, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, m *Member) error {
	m.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO staff (id, provider_id, full_name, email, role, permissions, activity_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.ProviderID, m.FullName, m.Email, m.Role, m.Permissions, m.ActivityScore)
	return err
}

func (r *repoPG) List(ctx context.Context, providerID uuid.UUID) ([]*Member, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+memberCols+` FROM staff WHERE provider_id = $1
		 ORDER BY role ASC, full_name ASC`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.FullName, &m.Email, &m.Role,
			&m.Permissions, &m.ActivityScore, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
