package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/schoolgate/internal/api/apierr"
	"github.com/mcoot/schoolgate/internal/middleware"
)

// Logging tags and logs API requests
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Recovery turns a panic into a JSON internal error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
