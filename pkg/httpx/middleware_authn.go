package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tasksetu/pkg/jwtx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// Authenticate gates a handler on a bearer session token.
//
//	no bearer token              -> 401
//	bad signature / expired      -> 403
//	subject missing or inactive  -> 403
//	loader failure               -> 500
//
// The subject is re-read through loader on every request, so deactivation
// and role changes apply on the next call even while the token is valid.
func Authenticate(v jwtx.Verifier, loader IdentityLoader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			// 1. Extract the bearer token.
			raw, ok := BearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tasksetu"`)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Access token required")
				return
			}

			// 2. Signature, expiry and issuer.
			claims, err := v.Verify(raw)
			if err != nil {
				log.Debug("session token rejected", slog.Any("err", err))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, http.StatusForbidden, "invalid_token", "Invalid or expired token")
				return
			}

			// 3. Fresh read of the subject.
			id, err := loader.LoadIdentity(ctx, claims.Subject)
			if errors.Is(err, ErrIdentityNotFound) {
				log.Warn("token subject no longer exists", slog.String("user_id", claims.Subject))
				WriteError(w, http.StatusForbidden, "invalid_token", "Invalid or expired token")
				return
			}
			if err != nil {
				log.Error("failed to load identity", slog.String("user_id", claims.Subject), slog.Any("err", err))
				WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
				return
			}

			// 4. Account must still be usable.
			if !id.Active {
				log.Info("inactive account refused", slog.String("user_id", id.UserID))
				WriteError(w, http.StatusForbidden, "account_inactive", "Account is inactive")
				return
			}

			ctx = WithIdentity(ctx, id)
			ctx = slogx.With(ctx, slog.String("user_id", id.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
