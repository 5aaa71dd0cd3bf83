package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mercato/internal/domain"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMissingRoleClaim = errors.New("missing role claim")
)

type claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies bearer tokens with a single process-wide HS256
// secret. It is constructed once at startup and immutable afterwards, so it
// is safe to share across requests without locking.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue mints a self-contained token for the principal. The role claim comes
// from the principal variant; tokens validate without any storage lookup.
func (i *Issuer) Issue(principal domain.Principal) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	c := claims{
		Email: principal.Email(),
		Name:  principal.DisplayName(),
		Role:  string(principal.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.PrincipalID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a bearer token. A structurally valid token
// without a recognized role claim is rejected as malformed rather than given
// a default role; that rejects tokens from incompatible issuer versions.
func (i *Issuer) Verify(tokenStr string) (domain.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return domain.TokenClaims{}, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return domain.TokenClaims{}, ErrInvalidToken
	}
	role := domain.Role(c.Role)
	if !role.Valid() {
		return domain.TokenClaims{}, ErrMissingRoleClaim
	}
	return domain.TokenClaims{
		PrincipalID: c.Subject,
		Email:       c.Email,
		Name:        c.Name,
		Role:        role,
	}, nil
}

// TTL exposes the configured lifetime so session rows can mirror it.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
