package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/schoolgate/internal/api/apierr"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/pass"
)

type contextKey string

const passContextKey contextKey = "pass"

// PassCookie is the cookie a browser client may carry the role pass in
const PassCookie = "pass"

// Auth creates middleware that requires a valid role pass
func Auth(issuer *pass.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			p, err := issuer.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), passContextKey, p)))
		})
	}
}

// AccountReader loads the account a pass was issued for
type AccountReader interface {
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
}

// RequireRole rejects passes for any other role, then re-reads the account so
// a pass stops working once its holder is deleted, blocked or reassigned.
// Must run after Auth.
func RequireRole(accounts AccountReader, role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPass(r.Context())
			if p == nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if p.Role != role {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}

			account, err := accounts.GetAccount(r.Context(), p.AccountID)
			if err != nil {
				if errors.Is(err, model.ErrAccountNotFound) {
					apierr.WriteError(w, apierr.NewUnauthorizedError())
					return
				}
				apierr.WriteError(w, err)
				return
			}
			if account.Blocked || account.Role != role {
				apierr.WriteError(w, apierr.NewPassRevokedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the pass from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(PassCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetPass returns the verified pass from the request context
func GetPass(ctx context.Context) *pass.Pass {
	p, _ := ctx.Value(passContextKey).(*pass.Pass)
	return p
}

// MustGetPass returns the verified pass or panics
func MustGetPass(ctx context.Context) *pass.Pass {
	p := GetPass(ctx)
	if p == nil {
		panic("no pass in context - auth middleware not applied?")
	}
	return p
}
