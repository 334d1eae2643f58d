package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Store persists tenant aggregates.
//
// Create must be atomic on the (owner, name) pair where the backend
// supports it (the Mongo store backs this with a unique index); the saga's
// duplicate-name guard alone cannot serialize concurrent provisioning
// calls. Deletes are idempotent.
type Store interface {
	Create(ctx context.Context, t Tenant) error

	// Get returns the tenant or ErrTenantNotFound.
	Get(ctx context.Context, id uuid.UUID) (Tenant, error)

	// GetByNameAndOwner returns the owner's tenant with the given name,
	// or ErrTenantNotFound.
	GetByNameAndOwner(ctx context.Context, name string, ownerID uuid.UUID) (Tenant, error)

	// GetBySubdomain returns the tenant claiming the subdomain,
	// or ErrTenantNotFound.
	GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error)

	// Update replaces the mutable fields of an existing tenant.
	Update(ctx context.Context, t Tenant) error

	// Delete removes the tenant record if it exists. Dependent role,
	// membership, installation and settings records are cleaned up by the
	// calling service, not by the store.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsStore persists tenant-local settings, one record per tenant.
type SettingsStore interface {
	Create(ctx context.Context, s Settings) error
	Get(ctx context.Context, tenantID uuid.UUID) (Settings, error)
	Update(ctx context.Context, s Settings) error
	Delete(ctx context.Context, tenantID uuid.UUID) error
}

// UserDirectory is the external user profile collaborator. The saga uses it
// to point the creator at their new tenant; the call is best-effort and a
// failure never aborts provisioning.
type UserDirectory interface {
	SetActiveTenant(ctx context.Context, userID, tenantID uuid.UUID) error
}

// TemplateSeeder copies system-provided template records (e.g. default
// document types) into a fresh tenant. Best-effort: failures are logged and
// swallowed, never rolled back.
type TemplateSeeder interface {
	SeedDefaults(ctx context.Context, tenantID uuid.UUID) error
}
