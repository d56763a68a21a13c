package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockUserStore struct {
	users map[uuid.UUID]*StoredUser
	err   error
	calls int
}

func (m *mockUserStore) FindActiveByID(_ context.Context, id uuid.UUID) (*StoredUser, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

type mockChecker struct{ connected bool }

func (m *mockChecker) IsConnected() bool { return m.connected }

func newTestGuard(users *mockUserStore, connected bool) (*Guard, *TokenCodec) {
	codec := NewTokenCodec("test-secret", time.Hour)
	guard := NewGuard(codec, users, &mockChecker{connected: connected}, zerolog.Nop())
	return guard, codec
}

func TestGuard_Authenticate_StoreAuthoritative(t *testing.T) {
	userID := uuid.New()
	storedProvider := uuid.New()
	store := &mockUserStore{users: map[uuid.UUID]*StoredUser{
		userID: {ID: userID, ProviderID: storedProvider, Role: "admin", Active: true},
	}}
	guard, codec := newTestGuard(store, true)

	// Token claims a stale role and provider; the store wins.
	token, err := codec.Issue(userID, uuid.New(), "doctor")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	p, err := guard.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if p.Role != "admin" {
		t.Errorf("expected stored role admin to win over claimed doctor, got %s", p.Role)
	}
	if p.ProviderID != storedProvider {
		t.Errorf("expected stored provider %s, got %s", storedProvider, p.ProviderID)
	}
	if p.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, p.UserID)
	}
}

func TestGuard_Authenticate_UnknownUserRejected(t *testing.T) {
	store := &mockUserStore{users: map[uuid.UUID]*StoredUser{}}
	guard, codec := newTestGuard(store, true)

	token, _ := codec.Issue(uuid.New(), uuid.New(), "doctor")
	if _, err := guard.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for unknown user, got %v", err)
	}
}

func TestGuard_Authenticate_InactiveUserRejected(t *testing.T) {
	userID := uuid.New()
	store := &mockUserStore{users: map[uuid.UUID]*StoredUser{
		userID: {ID: userID, ProviderID: uuid.New(), Role: "doctor", Active: false},
	}}
	guard, codec := newTestGuard(store, true)

	token, _ := codec.Issue(userID, uuid.New(), "doctor")
	if _, err := guard.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for deactivated user, got %v", err)
	}
}

func TestGuard_Authenticate_ClaimTrustWhileDisconnected(t *testing.T) {
	store := &mockUserStore{users: map[uuid.UUID]*StoredUser{}}
	guard, codec := newTestGuard(store, false)

	userID := uuid.New()
	providerID := uuid.New()
	token, _ := codec.Issue(userID, providerID, "pharmacy")

	p, err := guard.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if p.UserID != userID || p.ProviderID != providerID || p.Role != "pharmacy" {
		t.Errorf("expected principal built from claims, got %+v", p)
	}
	if store.calls != 0 {
		t.Errorf("expected zero store lookups while disconnected, got %d", store.calls)
	}
}

func TestGuard_Authenticate_ExpiredRejectedEvenWhileDisconnected(t *testing.T) {
	store := &mockUserStore{}
	guard, _ := newTestGuard(store, false)

	expired := NewTokenCodec("test-secret", -time.Minute)
	token, _ := expired.Issue(uuid.New(), uuid.New(), "doctor")

	if _, err := guard.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}
	if store.calls != 0 {
		t.Errorf("expected no store lookup for an invalid token, got %d", store.calls)
	}
}

func TestGuard_Authenticate_StoreErrorPropagates(t *testing.T) {
	store := &mockUserStore{err: errors.New("connection reset")}
	guard, codec := newTestGuard(store, true)

	token, _ := codec.Issue(uuid.New(), uuid.New(), "doctor")
	_, err := guard.Authenticate(context.Background(), token)
	if err == nil {
		t.Fatal("expected error when user lookup fails")
	}
	if errors.Is(err, ErrUnauthenticated) {
		t.Error("store failure must not masquerade as a credential failure")
	}
}

func TestGuard_Authorize(t *testing.T) {
	guard, _ := newTestGuard(&mockUserStore{}, true)

	tests := []struct {
		name    string
		role    string
		allowed []string
		wantErr bool
	}{
		{"exact match", "doctor", []string{"doctor", "admin"}, false},
		{"role not listed", "pharmacy", []string{"doctor", "admin"}, true},
		{"admin has no implicit grant", "admin", []string{"doctor"}, true},
		{"admin listed explicitly", "admin", []string{"doctor", "admin"}, false},
		{"empty allowed set", "doctor", nil, true},
	}

	for _, tt := range tests {
		err := guard.Authorize(&Principal{Role: tt.role}, tt.allowed...)
		if tt.wantErr && !errors.Is(err, ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: expected success, got %v", tt.name, err)
		}
	}
}
