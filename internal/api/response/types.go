package response

import (
	"fmt"
	"time"

	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/gate"
)

// Account represents an account in API responses. The credential never leaves the server.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Role           string    `json:"role"`
	FailedAttempts int       `json:"failed_attempts"`
	Blocked        bool      `json:"blocked"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:             string(a.ID),
		Username:       a.Username,
		FullName:       a.FullName,
		Phone:          a.Phone,
		Email:          a.Email,
		Role:           string(a.Role),
		FailedAttempts: a.FailedAttempts,
		Blocked:        a.Blocked,
		CreatedAt:      a.CreatedAt,
	}
}

// AccountsFromModel converts a list of accounts
func AccountsFromModel(accounts []*model.Account) []Account {
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountFromModel(a))
	}
	return out
}

// Window represents a login window in API responses
type Window struct {
	Token          string    `json:"token"`
	Order          [4]int    `json:"order"`
	Selected       *int      `json:"selected"`
	PuzzleFailures int       `json:"puzzle_failures"`
	SoftLocked     bool      `json:"soft_locked"`
	ExpiresAt      time.Time `json:"expires_at"`
	Swapped        bool      `json:"swapped,omitempty"`
}

// WindowFromView converts a gate.View
func WindowFromView(v gate.View) Window {
	return Window{
		Token:          v.Token,
		Order:          v.Order,
		Selected:       v.Selected,
		PuzzleFailures: v.PuzzleFailures,
		SoftLocked:     v.SoftLocked,
		ExpiresAt:      v.ExpiresAt,
	}
}

// WindowFromSelect converts a gate.SelectResult
func WindowFromSelect(r gate.SelectResult) Window {
	w := WindowFromView(r.View)
	w.Swapped = r.Swapped
	return w
}

// Login is the response for a login submission. Every outcome is a 200; the
// pass and route are only set when authenticated, the window only when it
// is still open.
type Login struct {
	Outcome       string     `json:"outcome"`
	Message       string     `json:"message"`
	Account       *Account   `json:"account,omitempty"`
	Pass          string     `json:"pass,omitempty"`
	PassExpiresAt *time.Time `json:"pass_expires_at,omitempty"`
	Route         string     `json:"route,omitempty"`
	Window        *Window    `json:"window,omitempty"`
}

// LoginFromResult fills the outcome, message and account of a Login
func LoginFromResult(r auth.Result) Login {
	resp := Login{Outcome: string(r.Outcome), Message: LoginMessage(r)}
	if r.Account != nil {
		a := AccountFromModel(r.Account)
		resp.Account = &a
		resp.Route = string(r.Account.Role)
	}
	return resp
}

// LoginMessage is the user-facing text for a login outcome
func LoginMessage(r auth.Result) string {
	switch r.Outcome {
	case auth.Authenticated:
		return fmt.Sprintf("Welcome, %s", r.Account.FullName)
	case auth.PuzzleUnsolved:
		return "The puzzle is not assembled correctly"
	case auth.AccountBlocked:
		return "Account is blocked, contact an administrator"
	case auth.UnknownCredentials:
		// Same text whether or not the username exists
		return "Invalid username or password"
	default:
		return ""
	}
}

// Me describes the holder of a role pass
type Me struct {
	Account   Account   `json:"account"`
	Route     string    `json:"route"`
	ExpiresAt time.Time `json:"pass_expires_at"`
}

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Windows int    `json:"windows"`
}
