package tenant

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithTenant stores the resolved tenant in the context.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the tenant previously stored by WithTenant.
func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(ctxKey{}).(Tenant)
	return t, ok
}

// IDFromContext returns just the tenant id, for handlers that key storage
// calls by tenant without needing the full record.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return t.ID, true
}

// MustFromContext panics when no tenant is present. Only for handlers
// mounted strictly behind the resolution middleware.
func MustFromContext(ctx context.Context) Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}
