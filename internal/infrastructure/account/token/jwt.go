package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

const (
	defaultTTL    = 12 * time.Hour
	defaultIssuer = "tournament-scoring"
	minSecretLen  = 32
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWeakSecret   = errors.New("jwt secret must be at least 32 bytes")
)

type claims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	TeamID    string `json:"team_id,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens that carry the session id and role.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

var _ usecase.TokenIssuer = (*Issuer)(nil)

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: defaultIssuer,
		now:    time.Now,
	}, nil
}

func (i *Issuer) Issue(_ context.Context, s session.Session) (string, time.Time, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: s.ID,
		Role:      string(s.Role),
		TeamID:    s.TeamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *Issuer) Verify(_ context.Context, raw string) (usecase.TokenClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return usecase.TokenClaims{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return usecase.TokenClaims{}, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.SessionID == "" || c.Subject == "" {
		return usecase.TokenClaims{}, ErrInvalidToken
	}
	role, err := user.ParseRole(c.Role)
	if err != nil {
		return usecase.TokenClaims{}, ErrInvalidToken
	}

	return usecase.TokenClaims{
		SessionID: c.SessionID,
		UserID:    c.Subject,
		Role:      role,
		TeamID:    c.TeamID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
