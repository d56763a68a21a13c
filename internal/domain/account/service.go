package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/cigali/cigali/internal/platform/auth"
	"github.com/cigali/cigali/internal/platform/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// uniqueViolation is the postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type Service struct {
	providers ProviderRepository
	users     UserRepository
	codec     *auth.TokenCodec
	store     auth.ConnectionChecker

	bcryptCost  int
	demoEnabled bool
}

func NewService(providers ProviderRepository, users UserRepository, codec *auth.TokenCodec,
	store auth.ConnectionChecker, bcryptCost int, demoEnabled bool) *Service {
	return &Service{
		providers:   providers,
		users:       users,
		codec:       codec,
		store:       store,
		bcryptCost:  bcryptCost,
		demoEnabled: demoEnabled,
	}
}

// AuthResult is what a successful credential exchange returns.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterInput creates a provider (clinic) together with its first admin
// user.
type RegisterInput struct {
	ProviderName string `json:"provider_name"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
}

// Register creates a new provider and its owning admin user. Registration
// requires authoritative writes, so it fails with db.ErrStoreUnavailable
// while the store is down.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !s.store.IsConnected() {
		return nil, db.ErrStoreUnavailable
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	var phone *string
	if in.Phone != "" {
		phone = &in.Phone
	}
	provider := &Provider{
		Name:             in.ProviderName,
		Email:            in.Email,
		Phone:            phone,
		SubscriptionPlan: "starter",
	}
	if err := provider.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.providers.Create(ctx, provider); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create provider: %w", err)
	}
	user.ProviderID = provider.ID
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.codec.Issue(user.ID, user.ProviderID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login exchanges email/password for a token. Lookup failures, inactive
// accounts, and bad passwords all collapse into ErrInvalidCredentials so the
// response does not leak which part failed.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if !s.store.IsConnected() {
		return nil, db.ErrStoreUnavailable
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	token, err := s.codec.Issue(user.ID, user.ProviderID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Fixed identities for the offline demo. The bypass only activates when the
// store is unreachable and DEMO_LOGIN_ENABLED is set; it never consults the
// store and never runs in production.
var demoAccounts = map[string]struct {
	userID     uuid.UUID
	providerID uuid.UUID
	name       string
	role       string
}{
	"demo@cigali.com": {
		userID:     uuid.MustParse("0b83f657-7df5-4e2c-9a35-c2fa3b1f2a01"),
		providerID: uuid.MustParse("8f2c4d1e-3a6b-4c8d-9e1f-5a7b9c0d2e41"),
		name:       "Demo Doctor",
		role:       auth.RoleDoctor,
	},
	"admin@cigali.com": {
		userID:     uuid.MustParse("4d9a2c3b-1e5f-4a7c-8b9d-0e2f4a6c8e02"),
		providerID: uuid.MustParse("8f2c4d1e-3a6b-4c8d-9e1f-5a7b9c0d2e41"),
		name:       "Demo Admin",
		role:       auth.RoleAdmin,
	},
}

const demoPassword = "password123"

// DemoLogin authenticates one of the fixed demo accounts. It is only
// available while the store is disconnected; once the store recovers the
// regular login path is authoritative again.
func (s *Service) DemoLogin(_ context.Context, email, password string) (*AuthResult, error) {
	if !s.demoEnabled {
		return nil, ErrInvalidCredentials
	}
	if s.store.IsConnected() {
		return nil, ErrInvalidCredentials
	}

	acct, ok := demoAccounts[email]
	if !ok || password != demoPassword {
		return nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(acct.userID, acct.providerID, acct.role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User: &User{
			ID:         acct.userID,
			ProviderID: acct.providerID,
			Name:       acct.name,
			Email:      email,
			Role:       acct.role,
			IsActive:   true,
		},
	}, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// GetProvider returns a provider by id.
func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

// UpdateProvider updates the mutable provider profile fields.
func (s *Service) UpdateProvider(ctx context.Context, p *Provider) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.providers.Update(ctx, p)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GuardStore adapts the user repository to the guard's lookup interface.
type GuardStore struct {
	users UserRepository
}

func NewGuardStore(users UserRepository) *GuardStore {
	return &GuardStore{users: users}
}

// FindActiveByID returns (nil, nil) for unknown users so the guard treats
// them as a credential failure rather than a store failure.
func (g *GuardStore) FindActiveByID(ctx context.Context, id uuid.UUID) (*auth.StoredUser, error) {
	user, err := g.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.StoredUser{
		ID:         user.ID,
		ProviderID: user.ProviderID,
		Role:       user.Role,
		Active:     user.IsActive,
	}, nil
}
