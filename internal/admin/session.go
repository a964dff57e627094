package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-cads-go/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
)

const sessionIssuer = "cads"

// ErrInvalidSession is returned for expired, forged or orphaned session tokens.
var ErrInvalidSession = errors.New("invalid session")

type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
}

// SessionConfigFromEnv reads SESSION_SECRET and SESSION_TTL_MINUTES.
func SessionConfigFromEnv() SessionConfig {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		// dev only
		secret = "cads-dev-session-secret"
	}
	ttl := 480
	if v, err := strconv.Atoi(os.Getenv("SESSION_TTL_MINUTES")); err == nil && v > 0 {
		ttl = v
	}
	return SessionConfig{Secret: []byte(secret), TTL: time.Duration(ttl) * time.Minute}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Sessions issues and resolves HS256 tokens that keep an admin signed in
// across views without holding on to the password.
type Sessions struct {
	cfg SessionConfig
	svc *Service
	now func() time.Time
}

func NewSessions(cfg SessionConfig, svc *Service) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = 480 * time.Minute
	}
	return &Sessions{cfg: cfg, svc: svc, now: time.Now}
}

// Issue signs a token for a logged-in admin.
func (s *Sessions) Issue(a *entity.Admin) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email: a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Resolve verifies token and loads the admin it was issued for.
func (s *Sessions) Resolve(ctx context.Context, token string) (*entity.Admin, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	a, err := s.svc.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: admin %s no longer exists", ErrInvalidSession, claims.Subject)
		}
		return nil, err
	}
	return a, nil
}
