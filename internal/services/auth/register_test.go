package auth

import (
	"github.com/mcoot/schoolgate/internal/model"
)

func validRegistration() Registration {
	return Registration{
		Username:        "alice",
		Password:        "password1",
		ConfirmPassword: "password1",
		FullName:        "Alice Brown",
	}
}

func (s *ServiceSuite) fieldErrors(err error) map[string]string {
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	return verr.Fields
}

func (s *ServiceSuite) TestRegisterCreatesStudentByDefault() {
	account, err := s.service.Register(s.ctx, validRegistration())
	s.Require().NoError(err)

	s.NotEmpty(account.ID)
	s.Equal(model.RoleStudent, account.Role)
	s.Equal("password1", account.Credential)
	s.Equal(s.clock.Now(), account.CreatedAt)
	s.Equal(0, account.FailedAttempts)
	s.False(account.Blocked)

	stored, err := s.store.LookupByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(account.ID, stored.ID)
}

func (s *ServiceSuite) TestRegisterTrimsFields() {
	reg := validRegistration()
	reg.Username = "  alice "
	reg.FullName = " Alice Brown "

	account, err := s.service.Register(s.ctx, reg)
	s.Require().NoError(err)
	s.Equal("alice", account.Username)
	s.Equal("Alice Brown", account.FullName)
}

func (s *ServiceSuite) TestRegisterRequiresFields() {
	_, err := s.service.Register(s.ctx, Registration{})

	fields := s.fieldErrors(err)
	s.Contains(fields, "username")
	s.Contains(fields, "password")
	s.Contains(fields, "full_name")
}

func (s *ServiceSuite) TestRegisterPasswordMismatch() {
	reg := validRegistration()
	reg.ConfirmPassword = "password2"

	_, err := s.service.Register(s.ctx, reg)

	fields := s.fieldErrors(err)
	s.Equal("passwords do not match", fields["confirm_password"])
}

func (s *ServiceSuite) TestRegisterNormalizesPhone() {
	reg := validRegistration()
	reg.Phone = "+7 (999) 123-45-67"

	account, err := s.service.Register(s.ctx, reg)
	s.Require().NoError(err)
	s.Equal("79991234567", account.Phone)
}

func (s *ServiceSuite) TestRegisterCountryCodeOnlyMeansNoPhone() {
	reg := validRegistration()
	reg.Phone = "+7 (___) ___-__-__"

	account, err := s.service.Register(s.ctx, reg)
	s.Require().NoError(err)
	s.Empty(account.Phone)
}

func (s *ServiceSuite) TestRegisterRejectsBadPhoneLengths() {
	for _, phone := range []string{"12345", "1234567890123456"} {
		reg := validRegistration()
		reg.Phone = phone

		_, err := s.service.Register(s.ctx, reg)

		fields := s.fieldErrors(err)
		s.Contains(fields, "phone", phone)
	}
}

func (s *ServiceSuite) TestRegisterValidatesEmail() {
	reg := validRegistration()
	reg.Email = "not-an-email"

	_, err := s.service.Register(s.ctx, reg)

	s.Contains(s.fieldErrors(err), "email")
}

func (s *ServiceSuite) TestRegisterRejectsUnknownRole() {
	reg := validRegistration()
	reg.Role = "janitor"

	_, err := s.service.Register(s.ctx, reg)

	s.Contains(s.fieldErrors(err), "role")
}

func (s *ServiceSuite) TestRegisterAcceptsTeacher() {
	reg := validRegistration()
	reg.Role = model.RoleTeacher
	reg.Email = "alice@school.example"

	account, err := s.service.Register(s.ctx, reg)
	s.Require().NoError(err)
	s.Equal(model.RoleTeacher, account.Role)
	s.Equal("alice@school.example", account.Email)
}

func (s *ServiceSuite) TestRegisterRefusesAdmin() {
	reg := validRegistration()
	reg.Role = model.RoleAdmin

	_, err := s.service.Register(s.ctx, reg)

	s.Equal("role must be teacher or student", s.fieldErrors(err)["role"])
	_, err = s.store.LookupByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *ServiceSuite) TestProvisionAllowsAdmin() {
	reg := validRegistration()
	reg.Role = model.RoleAdmin

	account, err := s.service.Provision(s.ctx, reg)
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, account.Role)
}

func (s *ServiceSuite) TestProvisionStillValidates() {
	reg := validRegistration()
	reg.Role = "janitor"
	reg.FullName = " "

	_, err := s.service.Provision(s.ctx, reg)

	fields := s.fieldErrors(err)
	s.Contains(fields, "role")
	s.Contains(fields, "full_name")
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	reg := validRegistration()
	reg.Username = "bob"

	_, err := s.service.Register(s.ctx, reg)
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *ServiceSuite) TestRegisterStoreFailure() {
	s.store.failCreate = true

	_, err := s.service.Register(s.ctx, validRegistration())
	s.ErrorIs(err, ErrStoreUnavailable)
}

func (s *ServiceSuite) TestNormalizePhone() {
	s.Equal("", NormalizePhone(""))
	s.Equal("", NormalizePhone("+7"))
	s.Equal("", NormalizePhone("+7 (___) ___-__-__"))
	s.Equal("4412345678", NormalizePhone("44 1234-5678"))
}
