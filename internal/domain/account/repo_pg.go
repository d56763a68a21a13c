package account

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

// -- Provider Repository --

type providerRepoPG struct{ db queryable }

func NewProviderRepoPG(db queryable) ProviderRepository { return &providerRepoPG{db: db} }

const providerCols = `id, name, email, phone, subscription_plan, logo_url, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.SubscriptionPlan, &p.LogoURL,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO providers (id, name, email, phone, subscription_plan, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Email, p.Phone, p.SubscriptionPlan, p.LogoURL)
	return err
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.db.QueryRow(ctx,
		`SELECT `+providerCols+` FROM providers WHERE id = $1`, id))
}

func (r *providerRepoPG) Update(ctx context.Context, p *Provider) error {
	_, err := r.db.Exec(ctx, `
		UPDATE providers SET name=$2, phone=$3, subscription_plan=$4, logo_url=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Phone, p.SubscriptionPlan, p.LogoURL)
	return err
}

// -- User Repository --

type userRepoPG struct{ db queryable }

func NewUserRepoPG(db queryable) UserRepository { return &userRepoPG{db: db} }

const userCols = `id, provider_id, name, email, password_hash, role, is_active, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.ProviderID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, provider_id, name, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.ProviderID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsActive)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *userRepoPG) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}
