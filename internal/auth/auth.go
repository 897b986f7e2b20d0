// Package auth issues and verifies the signed session tokens carried in the
// Authorization header.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"boot-shop/internal/domain"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = time.Hour

var (
	// ErrMissingToken indicates that no token was presented.
	ErrMissingToken = errors.New("access denied")
	// ErrInvalidToken indicates a token that fails verification or has expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden indicates a valid identity lacking the required role.
	ErrForbidden = errors.New("admin access required")
)

// Claims is the verified identity extracted from a token.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the user identifier the token was issued for.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// Authenticator signs and verifies HS256 tokens with a shared secret.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises an Authenticator.
type Option func(*Authenticator)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func NewAuthenticator(secret string, ttl time.Duration, opts ...Option) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	a := &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Issue creates a signed token for the given subject and role.
func (a *Authenticator) Issue(subjectID string, role domain.Role) (string, error) {
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and expiry and returns its claims. The
// credential store is not consulted.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if rest, ok := strings.CutPrefix(token, "Bearer"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireRole allows claims whose role equals role exactly. Roles form no
// hierarchy.
func RequireRole(role domain.Role, claims *Claims) error {
	if claims == nil || claims.Role != role {
		return ErrForbidden
	}
	return nil
}
