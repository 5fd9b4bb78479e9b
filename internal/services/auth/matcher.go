package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by MatcherFor
const (
	SchemePlain  = "plain"
	SchemeBcrypt = "bcrypt"
)

// ErrUnknownScheme is returned for an unsupported password scheme name
var ErrUnknownScheme = errors.New("unknown password scheme")

// CredentialMatcher decides whether a submitted password matches a stored
// credential, and turns a new password into what gets stored
type CredentialMatcher interface {
	Match(stored, password string) bool
	Prepare(password string) (string, error)
}

// PlainMatcher compares cleartext credentials exactly and case-sensitively.
// Stored credentials are the passwords themselves.
type PlainMatcher struct{}

func (PlainMatcher) Match(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func (PlainMatcher) Prepare(password string) (string, error) {
	return password, nil
}

// BcryptMatcher stores bcrypt hashes. Switching an existing store to it
// invalidates every cleartext credential already persisted.
type BcryptMatcher struct {
	Cost int
}

func (m BcryptMatcher) Match(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func (m BcryptMatcher) Prepare(password string) (string, error) {
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// MatcherFor returns the matcher for a configured scheme name
func MatcherFor(scheme string) (CredentialMatcher, error) {
	switch scheme {
	case "", SchemePlain:
		return PlainMatcher{}, nil
	case SchemeBcrypt:
		return BcryptMatcher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}
