package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/agaskrobot/fenix-university-registry/pkg/requestcontext"
)

// IdentityValidator verifies a bearer token and returns the attested
// caller identity.
type IdentityValidator interface {
	ValidateToken(tokenString string) (*IdentityClaims, error)
}

// IdentityClaims carries the identity the host environment attests per call.
type IdentityClaims struct {
	AccountID string
}

// RequireIdentity validates the Authorization bearer token and injects the
// caller's account into the request context. It attests identity only; the
// registry service decides whether that identity may write.
func RequireIdentity(validator IdentityValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithCallerAccount(ctx, claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
