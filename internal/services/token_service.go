package services

import (
	"errors"
	"time"

	"rentledger/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService signs and verifies the identity tokens returned on
// registration and login. HS256 with a process-wide secret injected at
// startup.
type TokenService interface {
	Sign(userID uuid.UUID, role string) (string, error)
	Verify(token string) (*IdentityClaims, error)
}

// IdentityClaims binds a token to a user id and role.
type IdentityClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *IdentityClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type tokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a token service. Expiry defaults to 7 days when
// zero.
func NewTokenService(secret string, expiry time.Duration) TokenService {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &tokenService{secret: []byte(secret), expiry: expiry}
}

func (s *tokenService) Sign(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "rentledger",
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry. Expired tokens fail with a distinct
// message so the guard can report "expired" rather than "invalid".
func (s *tokenService) Verify(tokenString string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.NewAuthError("Token expired")
		}
		return nil, common.NewAuthError("Invalid token")
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, common.NewAuthError("Invalid token")
	}
	return claims, nil
}
