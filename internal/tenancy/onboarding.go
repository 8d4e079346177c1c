package tenancy

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"gympulse/internal/errs"
	"gympulse/internal/metrics"
	"gympulse/internal/models"
	"gympulse/internal/store"
)

const (
	defaultCompany   = "Minha empresa"
	slugAttempts     = 6
	defaultLocale    = "pt-BR"
	maxFullNameRunes = 120
)

type OnboardInput struct {
	UserID   string
	Company  string
	FullName string
}

type OnboardResult struct {
	TenantID string      `json:"tenant_id"`
	Role     models.Role `json:"role"`
	Slug     string      `json:"slug"`
	Created  bool        `json:"created"`
}

type Onboarder struct {
	db       *gorm.DB
	lg       *zap.SugaredLogger
	metrics  *metrics.Metrics
	timezone string

	// suffix picks the random slug suffix on collisions.
	suffix func() int
}

func NewOnboarder(db *gorm.DB, lg *zap.SugaredLogger, m *metrics.Metrics, timezone string) *Onboarder {
	return &Onboarder{
		db:       db,
		lg:       lg,
		metrics:  m,
		timezone: timezone,
		suffix:   func() int { return rand.IntN(9999) },
	}
}

// Onboard creates a tenant owned by the user, or returns the existing one.
// Calling it any number of times leaves exactly one tenant role per user.
func (o *Onboarder) Onboard(ctx context.Context, in OnboardInput) (OnboardResult, error) {
	if in.UserID == "" {
		return OnboardResult{}, errs.ErrUnauthenticated
	}
	fullName := strings.TrimSpace(in.FullName)
	if len([]rune(fullName)) > maxFullNameRunes {
		return OnboardResult{}, errs.Validation("full_name", "full name is too long")
	}

	db := o.db.WithContext(ctx)
	if res, err := o.existing(db, in.UserID); !errors.Is(err, errs.ErrNeedsOnboarding) {
		if err == nil {
			o.metrics.Onboarding("existing")
		}
		return res, err
	}

	return o.create(db, in.UserID, in.Company, fullName)
}

// create assumes the user had no role a moment ago.
func (o *Onboarder) create(db *gorm.DB, userID, company, fullName string) (OnboardResult, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		company = defaultCompany
	}
	base := Slugify(company)

	var tenant models.Tenant
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		tenant, err = o.insertTenant(tx, company, base)
		if err != nil {
			return err
		}
		role := models.TenantRole{TenantID: tenant.ID, UserID: userID, Role: models.RoleOwner}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		if fullName != "" {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("full_name", fullName).Error; err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrTenantCreation):
		o.metrics.Onboarding("failed")
		return OnboardResult{}, err
	case store.IsUniqueViolation(err):
		// a concurrent call won the tenant_roles(user_id) race; the
		// rollback discarded our tenant, so converge on theirs
		o.lg.Infow("onboarding converged on concurrent tenant", "user_id", userID)
		o.metrics.Onboarding("converged")
		return o.existing(db, userID)
	default:
		o.metrics.Onboarding("failed")
		return OnboardResult{}, store.Failure(err)
	}

	o.seedSettings(db, tenant.ID)
	o.metrics.Onboarding("created")
	o.lg.Infow("tenant onboarded", "tenant_id", tenant.ID, "slug", tenant.Slug, "user_id", userID)
	return OnboardResult{TenantID: tenant.ID, Role: models.RoleOwner, Slug: tenant.Slug, Created: true}, nil
}

func (o *Onboarder) existing(db *gorm.DB, userID string) (OnboardResult, error) {
	role, err := findRole(db, userID)
	if err != nil {
		return OnboardResult{}, err
	}
	var tenant models.Tenant
	if err := db.Select("slug").Where("id = ?", role.TenantID).Take(&tenant).Error; err != nil {
		return OnboardResult{}, store.Failure(err)
	}
	return OnboardResult{TenantID: role.TenantID, Role: role.Role, Slug: tenant.Slug}, nil
}

// insertTenant tries the base slug and then random suffixes. Each attempt
// runs in a savepoint so a conflict does not abort the outer transaction.
func (o *Onboarder) insertTenant(tx *gorm.DB, name, base string) (models.Tenant, error) {
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, o.suffix())
		}
		t := models.Tenant{Name: name, Slug: slug}
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&t).Error
		})
		if err == nil {
			return t, nil
		}
		if !store.IsUniqueViolation(err) {
			return models.Tenant{}, err
		}
		o.lg.Debugw("tenant slug taken", "slug", slug, "attempt", attempt+1)
	}
	return models.Tenant{}, errs.Wrapf(errs.ErrTenantCreation, "no free slug for "+base)
}

func (o *Onboarder) seedSettings(db *gorm.DB, tenantID string) {
	settings := models.TenantSettings{
		TenantID:    tenantID,
		Timezone:    o.timezone,
		Locale:      defaultLocale,
		Preferences: datatypes.JSONMap{"dashboard_window_days": 30},
	}
	if err := db.Create(&settings).Error; err != nil {
		o.lg.Warnw("seeding tenant settings failed", "tenant_id", tenantID, "error", err)
		o.metrics.BestEffortFailure("tenant_settings")
	}
}
