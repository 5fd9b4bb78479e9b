package pass

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/schoolgate/internal/dependencies/mocks"
	"github.com/mcoot/schoolgate/internal/model"
)

func newIssuer(t *testing.T) (*Issuer, *mocks.MockClock) {
	t.Helper()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	issuer, err := New(cfg, clk)
	require.NoError(t, err)
	return issuer, clk
}

func teacher() *model.Account {
	return &model.Account{ID: "acc-1", Username: "bob", FullName: "Bob Smith", Role: model.RoleTeacher}
}

func TestIssueAndVerify(t *testing.T) {
	issuer, clk := newIssuer(t)

	token, expires, err := issuer.Issue(teacher())
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(8*time.Hour), expires)

	p, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, model.AccountID("acc-1"), p.AccountID)
	assert.Equal(t, model.RoleTeacher, p.Role)
	assert.Equal(t, "Bob Smith", p.Name)
	assert.True(t, expires.Equal(p.ExpiresAt))
}

func TestVerifyExpired(t *testing.T) {
	issuer, clk := newIssuer(t)
	token, _, err := issuer.Issue(teacher())
	require.NoError(t, err)

	clk.Advance(9 * time.Hour)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidPass)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, clk := newIssuer(t)
	token, _, err := issuer.Issue(teacher())
	require.NoError(t, err)

	other, err := New(Config{Secret: "other", Issuer: "schoolgate"}, clk)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidPass)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	issuer, clk := newIssuer(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "schoolgate",
			ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidPass)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	issuer, _ := newIssuer(t)
	account := teacher()
	account.Role = "janitor"
	token, _, err := issuer.Issue(account)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidPass)
}

func TestVerifyGarbage(t *testing.T) {
	issuer, _ := newIssuer(t)
	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidPass)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(DefaultConfig(), mocks.NewMockClock(time.Now()))
	assert.ErrorIs(t, err, ErrNoSecret)
}
