package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/auth"
	"gympulse/internal/errs"
	"gympulse/internal/models"
	"gympulse/internal/store"
	"gympulse/internal/tenancy"
	"gympulse/internal/validators"
)

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func Signup(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		email := strings.TrimSpace(strings.ToLower(req.Email))
		if !validators.ValidEmail(email) {
			respondError(w, r, lg, errs.Validation("email", "invalid email"))
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}

		u := models.User{Email: email, PasswordHash: hash, FullName: strings.TrimSpace(req.FullName), IsActive: true}
		if err := db.WithContext(r.Context()).Create(&u).Error; err != nil {
			if store.IsUniqueViolation(err) {
				respondFail(w, http.StatusConflict, "email already registered")
				return
			}
			respondError(w, r, lg, store.Failure(err))
			return
		}
		lg.Infow("user signed up", "user_id", u.ID)
		respondOK(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, signer *auth.Signer, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		var u models.User
		err := db.WithContext(r.Context()).First(&u, "email = ?", strings.TrimSpace(strings.ToLower(req.Email))).Error
		if err != nil || !u.IsActive || auth.CheckPassword(u.PasswordHash, req.Password) != nil {
			respondFail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		iss, err := signer.Sign(u.ID)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		sess := models.Session{JTI: iss.JTI, UserID: u.ID, ExpiresAt: iss.ExpiresAt}
		if err := db.WithContext(r.Context()).Create(&sess).Error; err != nil {
			respondError(w, r, lg, store.Failure(err))
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"token": iss.Token, "expires_at": iss.ExpiresAt})
	}
}

func Logout(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		err := db.WithContext(r.Context()).Model(&models.Session{}).
			Where("jti = ?", auth.FromContext(r.Context()).JWTID).
			Update("revoked_at", &now).Error
		if err != nil {
			respondError(w, r, lg, store.Failure(err))
			return
		}
		respondOK(w, http.StatusOK, nil)
	}
}

type passwordReq struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
}

// ChangePassword replaces the caller's password and revokes every other
// session of the user.
func ChangePassword(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordReq
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		claims := auth.FromContext(r.Context())
		var u models.User
		if err := db.WithContext(r.Context()).First(&u, "id = ?", claims.Subject).Error; err != nil {
			respondError(w, r, lg, errs.ErrUnauthenticated)
			return
		}
		if auth.CheckPassword(u.PasswordHash, req.CurrentPassword) != nil {
			respondError(w, r, lg, errs.Validation("current_password", "current password is wrong"))
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}

		now := time.Now()
		err = db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&u).Update("password_hash", hash).Error; err != nil {
				return err
			}
			return tx.Model(&models.Session{}).
				Where("user_id = ? AND jti <> ? AND revoked_at IS NULL", u.ID, claims.JWTID).
				Update("revoked_at", &now).Error
		})
		if err != nil {
			respondError(w, r, lg, store.Failure(err))
			return
		}
		respondOK(w, http.StatusOK, nil)
	}
}

// Me returns the caller and, once onboarded, their tenant.
func Me(db *gorm.DB, resolver *tenancy.Resolver, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		var u models.User
		if err := db.WithContext(r.Context()).First(&u, "id = ?", sub).Error; err != nil {
			respondError(w, r, lg, errs.ErrNotFound)
			return
		}

		var tenant any
		tc, err := resolver.Resolve(r.Context(), sub)
		switch {
		case err == nil:
			tenant = tc
		case !errors.Is(err, errs.ErrNeedsOnboarding):
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{
			"user":             u,
			"tenant":           tenant,
			"needs_onboarding": tenant == nil,
		})
	}
}
