package auth

import (
	"context"

	"gympulse/internal/tenancy"
)

type ctxKey string

const (
	userKey   ctxKey = "userClaims"
	tenantKey ctxKey = "tenant"
)

type Claims struct {
	Subject string
	JWTID   string
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}

func WithTenant(ctx context.Context, t tenancy.Context) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// Tenant returns the tenant resolved by RequireTenant.
func Tenant(ctx context.Context) tenancy.Context {
	if v, ok := ctx.Value(tenantKey).(tenancy.Context); ok {
		return v
	}
	return tenancy.Context{}
}
