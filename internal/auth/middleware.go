package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/errs"
	"gympulse/internal/models"
	"gympulse/internal/tenancy"
)

func deny(w http.ResponseWriter, status int, body map[string]any) {
	body["ok"] = false
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JWTAuth requires a valid bearer token whose session is neither revoked
// nor expired.
func JWTAuth(db *gorm.DB, signer *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				deny(w, http.StatusUnauthorized, map[string]any{"error": "missing bearer token"})
				return
			}
			claims, err := signer.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				deny(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
				return
			}
			var sess models.Session
			if db.WithContext(r.Context()).First(&sess, "jti = ? AND user_id = ?", claims.JWTID, claims.Subject).Error != nil {
				deny(w, http.StatusUnauthorized, map[string]any{"error": "session not found"})
				return
			}
			if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				deny(w, http.StatusUnauthorized, map[string]any{"error": "session expired/revoked"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// TenantResolver is satisfied by *tenancy.Resolver.
type TenantResolver interface {
	Resolve(ctx context.Context, userID string) (tenancy.Context, error)
}

// RequireTenant resolves the caller's tenant once per request. Users
// without one are sent to onboarding.
func RequireTenant(resolver TenantResolver, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, err := resolver.Resolve(r.Context(), Subject(r.Context()))
			switch {
			case err == nil:
			case errors.Is(err, errs.ErrUnauthenticated):
				deny(w, http.StatusUnauthorized, map[string]any{"error": "unauthenticated"})
				return
			case errors.Is(err, errs.ErrNeedsOnboarding):
				deny(w, http.StatusForbidden, map[string]any{"error": "needs_onboarding", "redirect": "/onboarding"})
				return
			default:
				lg.Errorw("tenant resolve failed", "user_id", Subject(r.Context()), "error", err)
				deny(w, http.StatusInternalServerError, map[string]any{"error": errs.Message(err)})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tc)))
		})
	}
}

// RequireRole admits callers whose tenant role is one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, Tenant(r.Context()).Role) {
				deny(w, http.StatusForbidden, map[string]any{"error": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
