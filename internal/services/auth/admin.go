package auth

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcoot/schoolgate/internal/model"
)

// AccountUpdate is an administrator's edit of an account. Nil fields keep
// their current value and a nil or blank Password keeps the credential.
type AccountUpdate struct {
	Username *string
	FullName *string
	Phone    *string
	Email    *string
	Role     *model.Role
	Password *string
}

// profile is an edited account as it will be stored
type profile struct {
	Username string     `json:"username" validate:"notblank,max=64"`
	FullName string     `json:"full_name" validate:"notblank,max=200"`
	Phone    string     `json:"phone" validate:"omitempty,phone"`
	Email    string     `json:"email" validate:"omitempty,email"`
	Role     model.Role `json:"role" validate:"role"`
}

func (u AccountUpdate) apply(a *model.Account) profile {
	p := profile{
		Username: a.Username,
		FullName: a.FullName,
		Phone:    a.Phone,
		Email:    a.Email,
		Role:     a.Role,
	}
	if u.Username != nil {
		p.Username = strings.TrimSpace(*u.Username)
	}
	if u.FullName != nil {
		p.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.Phone != nil {
		p.Phone = NormalizePhone(*u.Phone)
	}
	if u.Email != nil {
		p.Email = strings.TrimSpace(*u.Email)
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	return p
}

func (u AccountUpdate) newPassword() string {
	if u.Password == nil {
		return ""
	}
	return strings.TrimSpace(*u.Password)
}

// GetAccount returns one account
func (c *Coordinator) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	account, err := c.store.GetAccount(ctx, id)
	if err != nil {
		return nil, c.storeErr("get account", err)
	}
	return account, nil
}

// ListAccounts returns every account, admins first, then teachers, then
// students, each group by full name
func (c *Coordinator) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	accounts, err := c.store.ListAccounts(ctx)
	if err != nil {
		return nil, c.storeErr("list accounts", err)
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		ri, rj := accounts[i].Role.Rank(), accounts[j].Role.Rank()
		if ri != rj {
			return ri < rj
		}
		if accounts[i].FullName != accounts[j].FullName {
			return accounts[i].FullName < accounts[j].FullName
		}
		return accounts[i].Username < accounts[j].Username
	})
	return accounts, nil
}

// UpdateAccount edits an account's profile, role and optionally its
// password. The lockout counters are not touched.
func (c *Coordinator) UpdateAccount(ctx context.Context, id model.AccountID, upd AccountUpdate) (*model.Account, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	account, err := c.store.GetAccount(ctx, id)
	if err != nil {
		return nil, c.storeErr("get account", err)
	}

	edited := upd.apply(account)
	if err := c.validator.check(edited); err != nil {
		return nil, err
	}

	passwordChanged := false
	if pw := upd.newPassword(); pw != "" {
		credential, err := c.matcher.Prepare(pw)
		if err != nil {
			return nil, err
		}
		account.Credential = credential
		passwordChanged = true
	}

	previousRole := account.Role
	account.Username = edited.Username
	account.FullName = edited.FullName
	account.Phone = edited.Phone
	account.Email = edited.Email
	account.Role = edited.Role
	account.UpdatedAt = c.clock.Now()

	if err := c.store.UpdateAccount(ctx, account); err != nil {
		return nil, c.storeErr("update account", err)
	}

	c.logger.Info("account updated",
		slog.String("account_id", string(id)),
		slog.String("role", string(account.Role)),
		slog.Bool("role_changed", previousRole != account.Role),
		slog.Bool("password_changed", passwordChanged),
	)
	return account, nil
}

// Block locks an account out until it is unblocked. The failure counter is kept.
func (c *Coordinator) Block(ctx context.Context, id model.AccountID) (*model.Account, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	account, err := c.store.GetAccount(ctx, id)
	if err != nil {
		return nil, c.storeErr("get account", err)
	}
	if account.Blocked {
		return nil, model.ErrAlreadyBlocked
	}

	c.policy.Block(account)
	if err := c.store.UpdateFailedAttempts(ctx, id, account.FailedAttempts, account.Blocked); err != nil {
		return nil, c.storeErr("block account", err)
	}

	c.logger.Info("account blocked",
		slog.String("account_id", string(id)),
		slog.String("reason", "admin"),
	)
	return account, nil
}

// Unblock reactivates a blocked account and clears its failure counter
func (c *Coordinator) Unblock(ctx context.Context, id model.AccountID) (*model.Account, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	account, err := c.store.GetAccount(ctx, id)
	if err != nil {
		return nil, c.storeErr("get account", err)
	}
	if !account.Blocked {
		return nil, model.ErrNotBlocked
	}

	c.policy.Unblock(account)
	if err := c.store.UpdateFailedAttempts(ctx, id, account.FailedAttempts, account.Blocked); err != nil {
		return nil, c.storeErr("unblock account", err)
	}

	c.logger.Info("account unblocked", slog.String("account_id", string(id)))
	return account, nil
}

// ResetAttempts clears the failure counter without changing the blocked flag
func (c *Coordinator) ResetAttempts(ctx context.Context, id model.AccountID) (*model.Account, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	account, err := c.store.GetAccount(ctx, id)
	if err != nil {
		return nil, c.storeErr("get account", err)
	}

	if err := c.store.ResetAttempts(ctx, id); err != nil {
		return nil, c.storeErr("reset attempts", err)
	}
	account.FailedAttempts = 0

	c.logger.Info("failed attempts reset", slog.String("account_id", string(id)))
	return account, nil
}

// DeleteAccount removes an account
func (c *Coordinator) DeleteAccount(ctx context.Context, id model.AccountID) error {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	if err := c.store.DeleteAccount(ctx, id); err != nil {
		return c.storeErr("delete account", err)
	}

	c.logger.Info("account deleted", slog.String("account_id", string(id)))
	return nil
}
