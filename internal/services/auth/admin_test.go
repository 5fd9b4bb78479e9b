package auth

import (
	"github.com/mcoot/schoolgate/internal/model"
)

func (s *ServiceSuite) seed(id, username, fullName string, role model.Role) {
	s.Require().NoError(s.store.CreateAccount(s.ctx, &model.Account{
		ID:         model.AccountID(id),
		Username:   username,
		Credential: "pw",
		FullName:   fullName,
		Role:       role,
	}))
}

func strPtr(v string) *string {
	return &v
}

// ListAccounts tests

func (s *ServiceSuite) TestListAccountsOrdersByRoleThenFullName() {
	s.seed("acc-zed", "zed", "Anna Zorina", model.RoleTeacher)
	s.seed("acc-amy", "amy", "Amy Young", model.RoleStudent)
	s.seed("acc-root", "root", "Director", model.RoleAdmin)
	s.seed("acc-ann", "ann", "Boris Antonov", model.RoleTeacher)

	accounts, err := s.service.ListAccounts(s.ctx)
	s.Require().NoError(err)

	var names []string
	for _, a := range accounts {
		names = append(names, a.Username)
	}
	// bob is "Bob Smith", a student
	s.Equal([]string{"root", "zed", "ann", "amy", "bob"}, names)
}

func (s *ServiceSuite) TestListAccountsStoreFailure() {
	s.store.failList = true

	_, err := s.service.ListAccounts(s.ctx)
	s.ErrorIs(err, ErrStoreUnavailable)
}

// Block tests

func (s *ServiceSuite) TestBlockKeepsCounter() {
	s.attempt("bad")

	account, err := s.service.Block(s.ctx, "acc-bob")
	s.Require().NoError(err)
	s.True(account.Blocked)
	s.Equal(1, account.FailedAttempts)
	s.True(s.bob().Blocked)
	s.Equal(1, s.bob().FailedAttempts)

	s.Equal(AccountBlocked, s.attempt("secret123").Outcome)
}

func (s *ServiceSuite) TestBlockTwiceRefused() {
	_, err := s.service.Block(s.ctx, "acc-bob")
	s.Require().NoError(err)

	_, err = s.service.Block(s.ctx, "acc-bob")
	s.ErrorIs(err, model.ErrAlreadyBlocked)
}

func (s *ServiceSuite) TestBlockMissingAccount() {
	_, err := s.service.Block(s.ctx, "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestBlockUpdateFailure() {
	s.store.failUpdate = true

	_, err := s.service.Block(s.ctx, "acc-bob")
	s.ErrorIs(err, ErrStoreUnavailable)
	s.False(s.bob().Blocked)
}

// Unblock tests

func (s *ServiceSuite) TestUnblockActiveAccountRefused() {
	_, err := s.service.Unblock(s.ctx, "acc-bob")
	s.ErrorIs(err, model.ErrNotBlocked)
}

func (s *ServiceSuite) TestUnblockClearsCounter() {
	s.attempt("bad1")
	s.attempt("bad2")
	s.attempt("bad3")

	account, err := s.service.Unblock(s.ctx, "acc-bob")
	s.Require().NoError(err)
	s.False(account.Blocked)
	s.Equal(0, account.FailedAttempts)
}

func (s *ServiceSuite) TestUnblockLookupFailure() {
	s.store.failGet = true

	_, err := s.service.Unblock(s.ctx, "acc-bob")
	s.ErrorIs(err, ErrStoreUnavailable)
}

// ResetAttempts tests

func (s *ServiceSuite) TestResetAttemptsKeepsBlockedFlag() {
	s.attempt("bad1")
	s.attempt("bad2")
	s.attempt("bad3")

	account, err := s.service.ResetAttempts(s.ctx, "acc-bob")
	s.Require().NoError(err)
	s.Equal(0, account.FailedAttempts)
	s.True(account.Blocked)
	s.Equal(AccountBlocked, s.attempt("secret123").Outcome)
}

func (s *ServiceSuite) TestResetAttemptsGivesFreshStrikes() {
	s.attempt("bad1")
	s.attempt("bad2")

	_, err := s.service.ResetAttempts(s.ctx, "acc-bob")
	s.Require().NoError(err)

	s.attempt("bad3")
	s.False(s.bob().Blocked)
	s.Equal(1, s.bob().FailedAttempts)
}

// DeleteAccount tests

func (s *ServiceSuite) TestDeleteAccount() {
	s.Require().NoError(s.service.DeleteAccount(s.ctx, "acc-bob"))

	_, err := s.service.GetAccount(s.ctx, "acc-bob")
	s.ErrorIs(err, model.ErrAccountNotFound)
	s.Equal(UnknownCredentials, s.attempt("secret123").Outcome)
}

func (s *ServiceSuite) TestDeleteMissingAccount() {
	s.ErrorIs(s.service.DeleteAccount(s.ctx, "missing"), model.ErrAccountNotFound)
}

// UpdateAccount tests

func (s *ServiceSuite) TestUpdateAccountEditsProfile() {
	role := model.RoleTeacher
	account, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{
		Username: strPtr(" robert "),
		FullName: strPtr("Robert Smith"),
		Phone:    strPtr("+7 (999) 123-45-67"),
		Email:    strPtr("rob@school.example"),
		Role:     &role,
	})
	s.Require().NoError(err)

	s.Equal("robert", account.Username)
	s.Equal("79991234567", account.Phone)
	s.Equal(model.RoleTeacher, account.Role)
	s.Equal("secret123", account.Credential)
	s.Equal(s.clock.Now(), account.UpdatedAt)

	_, err = s.store.LookupByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrAccountNotFound)
	stored, err := s.store.LookupByUsername(s.ctx, "robert")
	s.Require().NoError(err)
	s.Equal("Robert Smith", stored.FullName)
}

func (s *ServiceSuite) TestUpdateAccountPasswordOnlyWhenGiven() {
	_, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{Password: strPtr("  ")})
	s.Require().NoError(err)
	s.Equal("secret123", s.bob().Credential)

	_, err = s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{Password: strPtr("fresh456")})
	s.Require().NoError(err)
	s.Equal(Authenticated, s.attempt("fresh456").Outcome)
}

func (s *ServiceSuite) TestUpdateAccountPromotesToAdmin() {
	role := model.RoleAdmin

	account, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{Role: &role})
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, account.Role)
	s.Equal(model.RoleAdmin, s.bob().Role)
}

func (s *ServiceSuite) TestUpdateAccountKeepsLockoutState() {
	s.attempt("bad1")
	s.attempt("bad2")
	s.attempt("bad3")

	_, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{FullName: strPtr("Bob Smithson")})
	s.Require().NoError(err)
	s.True(s.bob().Blocked)
	s.Equal(3, s.bob().FailedAttempts)
}

func (s *ServiceSuite) TestUpdateAccountValidates() {
	role := model.Role("janitor")

	_, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{
		Username: strPtr(""),
		Email:    strPtr("nope"),
		Role:     &role,
	})

	fields := s.fieldErrors(err)
	s.Contains(fields, "username")
	s.Contains(fields, "email")
	s.Contains(fields, "role")
	s.Equal("bob", s.bob().Username)
}

func (s *ServiceSuite) TestUpdateAccountDuplicateUsername() {
	s.seed("acc-amy", "amy", "Amy Young", model.RoleStudent)

	_, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{Username: strPtr("amy")})
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *ServiceSuite) TestUpdateMissingAccount() {
	_, err := s.service.UpdateAccount(s.ctx, "missing", AccountUpdate{FullName: strPtr("X")})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestUpdateAccountStoreFailure() {
	s.store.failEdit = true

	_, err := s.service.UpdateAccount(s.ctx, "acc-bob", AccountUpdate{FullName: strPtr("X")})
	s.ErrorIs(err, ErrStoreUnavailable)
}
