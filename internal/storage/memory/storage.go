package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/storage"
)

// Storage is an in-memory implementation of the credential store.
// Accounts are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		usernameIndex: make(map[string]model.AccountID),
	}
}

// Ensure Storage implements the interface
var _ storage.CredentialStore = (*Storage)(nil)

// Lookup operations

func (s *Storage) LookupByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Username < accounts[j].Username
	})
	return accounts, nil
}

// Lockout counter operations

func (s *Storage) UpdateFailedAttempts(ctx context.Context, id model.AccountID, count int, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.FailedAttempts = count
	account.Blocked = blocked
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Storage) ResetAttempts(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.FailedAttempts = 0
	account.UpdatedAt = time.Now().UTC()
	return nil
}

// Account lifecycle

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usernameIndex[account.Username]; exists {
		return model.ErrDuplicateUsername
	}
	s.accounts[account.ID] = account.Clone()
	s.usernameIndex[account.Username] = account.ID
	return nil
}

func (s *Storage) UpdateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[account.ID]
	if !ok {
		return model.ErrAccountNotFound
	}
	if owner, taken := s.usernameIndex[account.Username]; taken && owner != account.ID {
		return model.ErrDuplicateUsername
	}

	delete(s.usernameIndex, current.Username)
	s.usernameIndex[account.Username] = account.ID

	current.Username = account.Username
	current.Credential = account.Credential
	current.FullName = account.FullName
	current.Phone = account.Phone
	current.Email = account.Email
	current.Role = account.Role
	current.UpdatedAt = account.UpdatedAt
	return nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	delete(s.usernameIndex, account.Username)
	delete(s.accounts, id)
	return nil
}
