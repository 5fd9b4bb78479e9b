package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/storage"
)

// ErrWriteConflict is returned when a counter update kept losing the WATCH race
var ErrWriteConflict = errors.New("concurrent account update")

// Storage is a Redis-backed implementation of the credential store
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.connectTimeout())
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interfaces
var (
	_ storage.CredentialStore = (*Storage)(nil)
	_ storage.Pinger          = (*Storage)(nil)
)

// Lookup operations

func (s *Storage) LookupByUsername(ctx context.Context, username string) (*model.Account, error) {
	// Look up account ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetAccount(ctx, model.AccountID(id))
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getAccount(ctx, s.client, id)
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	ids, err := s.client.SMembers(ctx, accountsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Account{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(model.AccountID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Index entry outlived its record
			continue
		}
		var account model.Account
		if err := json.Unmarshal([]byte(str), &account); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Username < accounts[j].Username
	})
	return accounts, nil
}

// Lockout counter operations

func (s *Storage) UpdateFailedAttempts(ctx context.Context, id model.AccountID, count int, blocked bool) error {
	return s.updateAccount(ctx, id, func(a *model.Account) {
		a.FailedAttempts = count
		a.Blocked = blocked
	})
}

func (s *Storage) ResetAttempts(ctx context.Context, id model.AccountID) error {
	return s.updateAccount(ctx, id, func(a *model.Account) {
		a.FailedAttempts = 0
	})
}

// updateAccount rewrites the whole record under WATCH so no other writer can
// interleave between the read and the write
func (s *Storage) updateAccount(ctx context.Context, id model.AccountID, mutate func(*model.Account)) error {
	key := accountKey(id)

	for i := 0; i < s.cfg.watchRetries(); i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			account, err := getAccount(ctx, tx, id)
			if err != nil {
				return err
			}

			mutate(account)
			account.UpdatedAt = time.Now().UTC()

			data, err := json.Marshal(account)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s", ErrWriteConflict, id)
}

// Account lifecycle

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Claim the username first so two registrations cannot both win
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(account.Username), string(account.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicateUsername
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accountKey(account.ID), data, 0)
	pipe.SAdd(ctx, accountsIndexKey(), string(account.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the claim so the username is not stranded
		_ = s.client.Del(ctx, usernameIndexKey(account.Username)).Err()
		return err
	}
	return nil
}

func (s *Storage) UpdateAccount(ctx context.Context, account *model.Account) error {
	key := accountKey(account.ID)
	newIndex := usernameIndexKey(account.Username)

	for i := 0; i < s.cfg.watchRetries(); i++ {
		// Watching the target index key makes a concurrent claim of the new name abort us
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := getAccount(ctx, tx, account.ID)
			if err != nil {
				return err
			}

			renamed := current.Username != account.Username
			if renamed {
				owner, err := tx.Get(ctx, newIndex).Result()
				switch {
				case err == nil && owner != string(account.ID):
					return model.ErrDuplicateUsername
				case err != nil && !errors.Is(err, redis.Nil):
					return err
				}
			}

			oldIndex := usernameIndexKey(current.Username)
			current.Username = account.Username
			current.Credential = account.Credential
			current.FullName = account.FullName
			current.Phone = account.Phone
			current.Email = account.Email
			current.Role = account.Role
			current.UpdatedAt = account.UpdatedAt

			data, err := json.Marshal(current)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				if renamed {
					pipe.Del(ctx, oldIndex)
					pipe.Set(ctx, newIndex, string(account.ID), 0)
				}
				return nil
			})
			return err
		}, key, newIndex)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s", ErrWriteConflict, account.ID)
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, accountKey(id))
	pipe.Del(ctx, usernameIndexKey(account.Username))
	pipe.SRem(ctx, accountsIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getAccount(ctx context.Context, c getter, id model.AccountID) (*model.Account, error) {
	data, err := c.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}
