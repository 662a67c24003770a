package auth

import (
	"log/slog"
	"net/http"
)

// Guard turns Authorize decisions into route middleware.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger}
}

func (g *Guard) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				g.logger.Warn("authorization check failed: principal not found in context", "operation", op)
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			decision := Authorize(principal.Roles, op)
			if !decision.Allowed {
				g.logger.WarnContext(r.Context(), "access denied",
					"user_id", principal.ID,
					"operation", op,
					"roles", principal.Roles,
					"reason", decision.Reason)
				http.Error(w, decision.Reason, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
