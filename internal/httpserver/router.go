package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/audit"
	"gympulse/internal/auth"
	"gympulse/internal/cache"
	"gympulse/internal/config"
	"gympulse/internal/dashboard"
	"gympulse/internal/httpserver/handlers"
	"gympulse/internal/metrics"
	"gympulse/internal/models"
	"gympulse/internal/repo"
	"gympulse/internal/tenancy"
)

// NewRouter wires every component on top of db. Collectors register on
// reg, which /metrics also serves.
func NewRouter(db *gorm.DB, cfg *config.Config, lg *zap.SugaredLogger, reg *prometheus.Registry) http.Handler {
	m := metrics.New(reg)
	views := cache.New(cfg.DashboardCacheTTL, reg)
	opts := repo.Options{
		DB:       db,
		Audit:    audit.New(lg, m, cfg.AuditPolicy),
		Cache:    views,
		Logger:   lg,
		Location: cfg.Location(),
	}
	members := repo.NewMembers(opts)
	actions := repo.NewActions(opts)
	checkins := repo.NewCheckins(opts)
	audits := repo.NewAudit(opts)
	agg := dashboard.New(db, views)

	signer := auth.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn)
	resolver := tenancy.NewResolver(db)
	onboarder := tenancy.NewOnboarder(db, lg, m, cfg.Timezone)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", metrics.HandlerFor(reg))

	r.Post("/v1/auth/signup", handlers.Signup(db, lg))
	r.Post("/v1/auth/login", handlers.Login(db, signer, lg))
	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db, signer))
		protected.Get("/v1/me", handlers.Me(db, resolver, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(db, lg))
		protected.Post("/v1/auth/password", handlers.ChangePassword(db, lg))
		protected.Post("/v1/onboarding", handlers.Onboard(onboarder, lg))

		protected.Group(func(t chi.Router) {
			t.Use(auth.RequireTenant(resolver, lg))
			t.Get("/v1/dashboard", handlers.Dashboard(agg, lg))
			t.Get("/v1/settings", handlers.Settings(db, lg))

			t.Get("/v1/members", handlers.ListMembers(members, lg))
			t.Post("/v1/members", handlers.CreateMember(members, lg))
			t.Get("/v1/members/options", handlers.MemberOptions(members, lg))
			t.Post("/v1/members/status", handlers.SetMembersStatus(members, lg))
			t.Get("/v1/members/{id}", handlers.GetMember(members, lg))
			t.Patch("/v1/members/{id}", handlers.UpdateMember(members, lg))
			t.Post("/v1/members/{id}/activate", handlers.SetMemberActive(members, true, lg))
			t.Post("/v1/members/{id}/inactivate", handlers.SetMemberActive(members, false, lg))
			t.Post("/v1/members/{id}/checkins", handlers.CreateCheckin(checkins, lg))
			t.Get("/v1/members/{id}/checkins", handlers.ListMemberCheckins(checkins, lg))

			t.Get("/v1/actions", handlers.ListActions(actions, lg))
			t.Post("/v1/actions", handlers.CreateAction(actions, lg))
			t.Get("/v1/actions/types", handlers.ActionTypes(actions))
			t.Post("/v1/actions/status", handlers.SetActionsStatus(actions, lg))
			t.Get("/v1/actions/{id}", handlers.GetAction(actions, lg))
			t.Patch("/v1/actions/{id}", handlers.UpdateAction(actions, lg))
			t.Delete("/v1/actions/{id}", handlers.DeleteAction(actions, lg))

			t.Get("/v1/checkins", handlers.ListCheckins(checkins, lg))

			t.Group(func(admin chi.Router) {
				admin.Use(auth.RequireRole(models.RoleOwner, models.RoleAdmin))
				admin.Get("/v1/audit", handlers.AuditLogs(audits, lg))
			})
		})
	})
	return r
}
