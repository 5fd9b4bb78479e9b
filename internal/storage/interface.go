package storage

import (
	"context"

	"github.com/mcoot/schoolgate/internal/model"
)

// CredentialStore persists login accounts and their lockout counters.
// Lookups of a missing account return model.ErrAccountNotFound; any other
// error means the backend itself failed.
type CredentialStore interface {
	// Lookup operations
	LookupByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)

	// Lockout counter operations
	UpdateFailedAttempts(ctx context.Context, id model.AccountID, count int, blocked bool) error
	ResetAttempts(ctx context.Context, id model.AccountID) error

	// Account lifecycle
	CreateAccount(ctx context.Context, account *model.Account) error
	// UpdateAccount replaces the profile fields (username, credential, full
	// name, phone, email, role). The lockout counters are left alone.
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id model.AccountID) error
}

// Pinger is implemented by stores that can report backend health
type Pinger interface {
	Ping(ctx context.Context) error
}
