package lockout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/schoolgate/internal/model"
)

type PolicySuite struct {
	suite.Suite
	policy  Policy
	account *model.Account
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	s.policy = DefaultPolicy()
	s.account = &model.Account{ID: "a1", Username: "bob", Credential: "secret123", Role: model.RoleStudent}
}

func (s *PolicySuite) TestFailuresBlockAtThreshold() {
	s.False(s.policy.RecordPasswordFailure(s.account))
	s.Equal(1, s.account.FailedAttempts)
	s.False(s.account.Blocked)

	s.False(s.policy.RecordPasswordFailure(s.account))
	s.Equal(2, s.account.FailedAttempts)
	s.False(s.account.Blocked)

	s.True(s.policy.RecordPasswordFailure(s.account))
	s.Equal(3, s.account.FailedAttempts)
	s.True(s.account.Blocked)
}

func (s *PolicySuite) TestFailureOnBlockedAccountIsIdempotent() {
	s.account.FailedAttempts = 3
	s.account.Blocked = true

	s.False(s.policy.RecordPasswordFailure(s.account))

	s.Equal(3, s.account.FailedAttempts)
	s.True(s.account.Blocked)
}

func (s *PolicySuite) TestCounterNeverExceedsThreshold() {
	for i := 0; i < 10; i++ {
		s.policy.RecordPasswordFailure(s.account)
	}
	s.Equal(3, s.account.FailedAttempts)
}

func (s *PolicySuite) TestAdminBlockedAccountBlocksOnFailure() {
	s.account.FailedAttempts = 3

	s.True(s.policy.RecordPasswordFailure(s.account))
	s.Equal(3, s.account.FailedAttempts)
	s.True(s.account.Blocked)
}

func (s *PolicySuite) TestRecordSuccessClearsCounterOnly() {
	s.account.FailedAttempts = 2

	s.policy.RecordSuccess(s.account)

	s.Equal(0, s.account.FailedAttempts)
	s.False(s.account.Blocked)
}

func (s *PolicySuite) TestUnblockClearsBoth() {
	s.account.FailedAttempts = 3
	s.account.Blocked = true

	s.policy.Unblock(s.account)

	s.Equal(0, s.account.FailedAttempts)
	s.False(s.account.Blocked)
}

func (s *PolicySuite) TestBlockKeepsCounter() {
	s.account.FailedAttempts = 1

	s.policy.Block(s.account)

	s.True(s.account.Blocked)
	s.Equal(1, s.account.FailedAttempts)
}

func (s *PolicySuite) TestAttemptsLeft() {
	s.Equal(3, s.policy.AttemptsLeft(s.account))
	s.policy.RecordPasswordFailure(s.account)
	s.Equal(2, s.policy.AttemptsLeft(s.account))
	s.policy.RecordPasswordFailure(s.account)
	s.Equal(1, s.policy.AttemptsLeft(s.account))
	s.policy.RecordPasswordFailure(s.account)
	s.Equal(0, s.policy.AttemptsLeft(s.account))
}

func (s *PolicySuite) TestCustomThreshold() {
	p := Policy{MaxFailedAttempts: 5}
	for i := 0; i < 4; i++ {
		p.RecordPasswordFailure(s.account)
	}
	s.False(s.account.Blocked)
	s.True(p.RecordPasswordFailure(s.account))
}

func TestZeroPolicyUsesDefault(t *testing.T) {
	var p Policy
	a := &model.Account{}
	for i := 0; i < DefaultMaxFailedAttempts; i++ {
		p.RecordPasswordFailure(a)
	}
	assert.True(t, a.Blocked)
}

func TestPuzzleCounter(t *testing.T) {
	c := NewPuzzleCounter(0)
	assert.Equal(t, DefaultPuzzleFailureLimit, c.Limit)
	assert.False(t, c.SoftLocked())

	assert.Equal(t, 1, c.Record())
	assert.Equal(t, 2, c.Record())
	assert.False(t, c.SoftLocked())
	assert.Equal(t, 3, c.Record())
	assert.True(t, c.SoftLocked())

	assert.Equal(t, 3, c.Record())
	assert.Equal(t, 3, c.Failures())

	c.Reset()
	assert.Equal(t, 0, c.Failures())
	assert.False(t, c.SoftLocked())
}

func TestPuzzleCountersAreIndependent(t *testing.T) {
	a := NewPuzzleCounter(3)
	b := NewPuzzleCounter(3)
	for i := 0; i < 3; i++ {
		a.Record()
	}
	assert.True(t, a.SoftLocked())
	assert.False(t, b.SoftLocked())
	assert.Equal(t, 0, b.Failures())
}
