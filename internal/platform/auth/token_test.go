package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	userID := uuid.New()
	providerID := uuid.New()

	token, err := codec.Issue(userID, providerID, "doctor")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}

	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.ProviderID != providerID.String() {
		t.Errorf("expected provider_id %s, got %s", providerID, claims.ProviderID)
	}
	if claims.Role != "doctor" {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestTokenCodec_RejectsExpired(t *testing.T) {
	codec := NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Issue(uuid.New(), uuid.New(), "doctor")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenCodec_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenCodec("secret-a", time.Hour)
	verifier := NewTokenCodec("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New(), uuid.New(), "admin")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenCodec_RejectsMalformed(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestTokenCodec_RejectsBadClaimShape(t *testing.T) {
	secret := []byte("test-secret")
	codec := NewTokenCodec("test-secret", time.Hour)

	sign := func(claims Claims) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := tok.SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return signed
	}

	base := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name   string
		claims Claims
	}{
		{"missing role", Claims{RegisteredClaims: base, ProviderID: uuid.NewString()}},
		{"non-uuid provider", Claims{RegisteredClaims: base, ProviderID: "clinic-42", Role: "doctor"}},
		{
			"non-uuid subject",
			Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "user-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
				ProviderID: uuid.NewString(),
				Role:       "doctor",
			},
		},
	}

	for _, tt := range tests {
		if _, err := codec.Verify(sign(tt.claims)); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", tt.name, err)
		}
	}
}

func TestTokenCodec_RejectsUnsignedToken(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ProviderID: uuid.NewString(),
		Role:       "admin",
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none token, got %v", err)
	}
}
