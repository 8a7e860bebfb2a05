package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// SessionConfig holds configuration for admin session tokens
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionService issues and checks the token an admin panel session runs
// under. An expired token sends the operator back to the login loop.
type SessionService struct {
	config SessionConfig
	clock  Clock
}

// NewSessionService creates a new session service
func NewSessionService(config SessionConfig, clock Clock) *SessionService {
	if clock == nil {
		clock = SystemClock
	}
	return &SessionService{config: config, clock: clock}
}

// Claims represents admin session claims
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a session token for the account
func (s *SessionService) Issue(username string, role models.Role) (string, error) {
	now := s.clock()
	expirationTime := now.Add(s.config.TTL)

	claims := &Claims{
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return tokenString, nil
}

// Validate validates a session token and returns its claims
func (s *SessionService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid session")
	}

	return claims, nil
}
