package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"voxform/internal/config"
	"voxform/internal/domain"
)

const sessionAudience = "session"

// SessionClaims identifies one form session. Subject is the session id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionTokens issues and validates the signed session tokens carried in the
// session cookie or X-Session-Token header.
type SessionTokens interface {
	// Resolve returns the session id in token, minting a new session when the
	// token is missing or invalid. isNew reports the latter.
	Resolve(token string) (sessionID string, isNew bool)
	Issue(sessionID string) (token string, expiresAt time.Time, err error)
	Validate(token string) (string, error)
}

type sessionTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSessionTokens creates a SessionTokens implementation using HS256.
func NewSessionTokens(cfg config.SessionConfig) SessionTokens {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &sessionTokens{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl}
}

func (t *sessionTokens) Resolve(token string) (string, bool) {
	if token != "" {
		if id, err := t.Validate(token); err == nil {
			return id, false
		}
	}
	return uuid.New().String(), true
}

func (t *sessionTokens) Issue(sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{sessionAudience},
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *sessionTokens) Validate(token string) (string, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithAudience(sessionAudience), jwt.WithIssuer(t.issuer))
	if err != nil {
		return "", fmt.Errorf("parsing session token: %w", err)
	}
	if !parsed.Valid {
		return "", domain.ErrUnauthorized
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
