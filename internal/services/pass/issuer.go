package pass

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/schoolgate/internal/dependencies/clock"
	"github.com/mcoot/schoolgate/internal/model"
)

var (
	ErrInvalidPass = errors.New("invalid or expired pass")
	ErrNoSecret    = errors.New("pass secret must not be empty")
)

// Config holds configuration for role passes
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// DefaultConfig returns default pass configuration. Secret has no default.
func DefaultConfig() Config {
	return Config{
		TTL:    8 * time.Hour,
		Issuer: "schoolgate",
	}
}

// Claims is the payload of a role pass
type Claims struct {
	Role model.Role `json:"role"`
	Name string     `json:"name"`
	jwt.RegisteredClaims
}

// Pass is a verified role pass
type Pass struct {
	AccountID model.AccountID
	Role      model.Role
	Name      string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 role passes
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
}

// New creates a new Issuer
func New(cfg Config, clock clock.Clock) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		clock:  clock,
	}, nil
}

// Issue signs a pass for an authenticated account
func (i *Issuer) Issue(account *model.Account) (string, time.Time, error) {
	now := i.clock.Now()
	expires := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: account.Role,
		Name: account.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(account.ID),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign pass: %w", err)
	}
	return signed, expires, nil
}

// Verify parses a pass and checks its signature, expiry and role
func (i *Issuer) Verify(tokenString string) (*Pass, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidPass
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidPass
	}

	return &Pass{
		AccountID: model.AccountID(claims.Subject),
		Role:      claims.Role,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
