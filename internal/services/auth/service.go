package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/schoolgate/internal/dependencies/clock"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/lockout"
	"github.com/mcoot/schoolgate/internal/services/puzzle"
	"github.com/mcoot/schoolgate/internal/storage"
)

// ErrStoreUnavailable wraps any credential store failure other than a missing account
var ErrStoreUnavailable = errors.New("credential store unavailable")

// Outcome is the tagged result of a login attempt
type Outcome string

const (
	Authenticated      Outcome = "authenticated"
	PuzzleUnsolved     Outcome = "puzzle_unsolved"
	UnknownCredentials Outcome = "unknown_credentials"
	AccountBlocked     Outcome = "account_blocked"
)

// Attempt is one submission of the login form
type Attempt struct {
	Username  string
	Password  string
	Challenge *model.Challenge
	// Puzzle is the submitting window's failure counter; nil skips counting
	Puzzle *lockout.PuzzleCounter
}

// Result is the decision for an Attempt. Account is only set when Authenticated.
type Result struct {
	Outcome      Outcome
	Account      *model.Account
	AttemptsLeft int

	charged bool
}

// ChargedFailure reports whether a wrong password was counted against an existing account
func (r Result) ChargedFailure() bool {
	return r.charged
}

// Config holds configuration for the coordinator
type Config struct {
	MaxFailedAttempts int
	Matcher           CredentialMatcher
}

// DefaultConfig returns the inherited behaviour: three strikes, cleartext credentials
func DefaultConfig() Config {
	return Config{
		MaxFailedAttempts: lockout.DefaultMaxFailedAttempts,
		Matcher:           PlainMatcher{},
	}
}

// Coordinator turns a login submission into a single decision and owns every
// write to the lockout counters
type Coordinator struct {
	store   storage.CredentialStore
	engine  *puzzle.Engine
	policy  lockout.Policy
	matcher CredentialMatcher
	clock   clock.Clock
	logger  *slog.Logger

	locks     *keyLock
	validator *registrationValidator
}

// New creates a new Coordinator
func New(
	store storage.CredentialStore,
	engine *puzzle.Engine,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Coordinator {
	if cfg.Matcher == nil {
		cfg.Matcher = PlainMatcher{}
	}
	return &Coordinator{
		store:     store,
		engine:    engine,
		policy:    lockout.Policy{MaxFailedAttempts: cfg.MaxFailedAttempts},
		matcher:   cfg.Matcher,
		clock:     clock,
		logger:    logger,
		locks:     newKeyLock(),
		validator: newRegistrationValidator(),
	}
}

// Policy returns the lockout policy in force
func (c *Coordinator) Policy() lockout.Policy {
	return c.policy
}

// Attempt evaluates a login submission. The puzzle is checked first and a wrong
// order never touches the store. Store failures come back as ErrStoreUnavailable.
func (c *Coordinator) Attempt(ctx context.Context, a Attempt) (Result, error) {
	if a.Challenge == nil || !c.engine.IsSolved(a.Challenge) {
		if a.Puzzle != nil {
			a.Puzzle.Record()
		}
		return Result{Outcome: PuzzleUnsolved}, nil
	}

	found, err := c.store.LookupByUsername(ctx, a.Username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return Result{Outcome: UnknownCredentials}, nil
		}
		return Result{}, c.unavailable("lookup", err)
	}

	unlock := c.locks.Lock(string(found.ID))
	defer unlock()

	// Re-read under the lock so the decision sees the latest counters
	account, err := c.store.GetAccount(ctx, found.ID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return Result{Outcome: UnknownCredentials}, nil
		}
		return Result{}, c.unavailable("lookup", err)
	}

	if account.Blocked {
		return Result{Outcome: AccountBlocked}, nil
	}

	if !c.matcher.Match(account.Credential, a.Password) {
		blocked := c.policy.RecordPasswordFailure(account)
		if err := c.store.UpdateFailedAttempts(ctx, account.ID, account.FailedAttempts, account.Blocked); err != nil {
			return Result{}, c.unavailable("update failed attempts", err)
		}

		if blocked {
			c.logger.Info("account blocked",
				slog.String("account_id", string(account.ID)),
				slog.String("reason", "failed_attempts"),
				slog.Int("failed_attempts", account.FailedAttempts),
			)
		} else {
			c.logger.Warn("wrong password",
				slog.String("account_id", string(account.ID)),
				slog.Int("failed_attempts", account.FailedAttempts),
			)
		}

		return Result{
			Outcome:      UnknownCredentials,
			AttemptsLeft: c.policy.AttemptsLeft(account),
			charged:      true,
		}, nil
	}

	c.policy.RecordSuccess(account)
	if err := c.store.ResetAttempts(ctx, account.ID); err != nil {
		return Result{}, c.unavailable("reset attempts", err)
	}

	c.logger.Info("account authenticated",
		slog.String("account_id", string(account.ID)),
		slog.String("role", string(account.Role)),
	)

	return Result{
		Outcome:      Authenticated,
		Account:      account,
		AttemptsLeft: c.policy.AttemptsLeft(account),
	}, nil
}

// unavailable logs and wraps a backend failure
func (c *Coordinator) unavailable(op string, err error) error {
	c.logger.Error("credential store failure",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// storeErr passes domain sentinels through and wraps everything else
func (c *Coordinator) storeErr(op string, err error) error {
	if errors.Is(err, model.ErrAccountNotFound) || errors.Is(err, model.ErrDuplicateUsername) {
		return err
	}
	return c.unavailable(op, err)
}
