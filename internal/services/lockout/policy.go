package lockout

import "github.com/mcoot/schoolgate/internal/model"

// DefaultMaxFailedAttempts is the number of wrong passwords that blocks an account
const DefaultMaxFailedAttempts = 3

// Policy applies the persistent per-account lockout rules. It only mutates the
// account value it is given; persisting the result is the caller's job.
type Policy struct {
	MaxFailedAttempts int
}

// DefaultPolicy returns a Policy with the default threshold
func DefaultPolicy() Policy {
	return Policy{MaxFailedAttempts: DefaultMaxFailedAttempts}
}

func (p Policy) threshold() int {
	if p.MaxFailedAttempts <= 0 {
		return DefaultMaxFailedAttempts
	}
	return p.MaxFailedAttempts
}

// RecordPasswordFailure counts one wrong password and blocks the account once
// the threshold is reached. It reports whether this call blocked the account.
func (p Policy) RecordPasswordFailure(a *model.Account) bool {
	if a.Blocked {
		return false
	}
	if a.FailedAttempts < p.threshold() {
		a.FailedAttempts++
	}
	if a.FailedAttempts >= p.threshold() {
		a.Blocked = true
		return true
	}
	return false
}

// RecordSuccess clears the failure counter. The blocked flag is left alone.
func (p Policy) RecordSuccess(a *model.Account) {
	a.FailedAttempts = 0
}

// Unblock reactivates the account and clears its counter
func (p Policy) Unblock(a *model.Account) {
	a.Blocked = false
	a.FailedAttempts = 0
}

// Block marks the account blocked without touching its counter
func (p Policy) Block(a *model.Account) {
	a.Blocked = true
}

// AttemptsLeft returns how many wrong passwords remain before the account blocks
func (p Policy) AttemptsLeft(a *model.Account) int {
	if a.Blocked {
		return 0
	}
	left := p.threshold() - a.FailedAttempts
	if left < 0 {
		return 0
	}
	return left
}
