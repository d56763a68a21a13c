package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry, or
// claim-shape validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. Subject carries the user id; ProviderID scopes
// every downstream query to the user's clinic.
type Claims struct {
	jwt.RegisteredClaims
	ProviderID string `json:"provider_id"`
	Role       string `json:"role"`
}

// TokenCodec issues and verifies HS256 bearer tokens with a shared secret.
type TokenCodec struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenCodec(secret string, expiresIn time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), expiresIn: expiresIn}
}

// Issue signs a token for the given user. The role is embedded as a hint for
// clients; the guard re-resolves it from the store whenever the store is
// reachable.
func (tc *TokenCodec) Issue(userID, providerID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.expiresIn)),
		},
		ProviderID: providerID.String(),
		Role:       role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Expired, malformed, or
// wrongly signed tokens fail with ErrInvalidToken regardless of store
// connectivity; so do structurally valid tokens whose subject or
// provider_id is not a UUID or whose role is empty.
func (tc *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ProviderID); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
