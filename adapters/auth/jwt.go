// Package auth provides stateless authentication using JWT.
// Designed for horizontal scaling - no shared state between instances.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/ports"
)

// Claims represents the JWT claims carried by an access token. The
// identity snapshot is embedded so permission gates need no database
// lookup per request.
type Claims struct {
	UserID      string   `json:"uid"`
	Email       string   `json:"email"`
	FullName    string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms,omitempty"`
	jwt.RegisteredClaims
}

// TokenService provides stateless JWT token operations.
// Thread-safe and suitable for concurrent use.
type TokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewTokenService creates a new JWT token service.
// If secret is empty, a random 32-byte secret is generated.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	var secretBytes []byte
	if secret == "" {
		secretBytes = make([]byte, 32)
		rand.Read(secretBytes)
	} else {
		secretBytes = []byte(secret)
	}

	if expiration == 0 {
		expiration = 24 * time.Hour
	}

	return &TokenService{
		secret:     secretBytes,
		issuer:     "openshelf",
		expiration: expiration,
	}
}

// Issue creates a signed token for the identity.
func (s *TokenService) Issue(id identity.Identity) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID:      id.UserID,
		Email:       id.Email,
		FullName:    id.FullName,
		Role:        string(id.Role),
		Permissions: id.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning the identity it carries.
func (s *TokenService) Verify(tokenString string) (identity.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return identity.Identity{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return identity.Identity{}, errors.New("invalid token")
	}

	return identity.Identity{
		UserID:      claims.UserID,
		Email:       claims.Email,
		FullName:    claims.FullName,
		Role:        identity.Role(claims.Role),
		Permissions: claims.Permissions,
	}, nil
}

// GenerateSecret generates a random secret suitable for JWT signing.
func GenerateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Ensure interface compliance.
var _ ports.TokenService = (*TokenService)(nil)
