package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- Error Definitions ---
var (
	ErrInvalidServiceKey = errors.New("authentication failed: invalid service key")
	ErrTokenGeneration   = errors.New("failed to generate authentication token")
)

// TokenService exchanges the shared service key for a short-lived bearer
// token used on the planning endpoints.
type TokenService interface {
	IssueToken(ctx context.Context, serviceKey, subject string) (token string, expiresAt time.Time, err error)
}

// tokenService implements the TokenService interface.
type tokenService struct {
	serviceKey    string
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(serviceKey, jwtSecret string, jwtExpiration time.Duration) TokenService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &tokenService{
		serviceKey:    serviceKey,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// tokenClaims defines the structure of the JWT payload.
type tokenClaims struct {
	jwt.RegisteredClaims
}

// IssueToken validates the shared key and signs a bearer token.
func (s *tokenService) IssueToken(ctx context.Context, serviceKey, subject string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(serviceKey), []byte(s.serviceKey)) != 1 {
		return "", time.Time{}, ErrInvalidServiceKey
	}
	if subject == "" {
		subject = "planner"
	}

	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "codetrekking-planner",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, ErrTokenGeneration
	}
	return signedToken, expirationTime, nil
}
