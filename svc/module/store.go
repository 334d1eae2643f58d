package module

import (
	"context"

	"github.com/google/uuid"
)

// Store persists module installation records.
//
// CreateIfAbsent is the primitive that closes the check-then-create race:
// two concurrent activations of the same (tenant, module) pair must yield
// exactly one record, with exactly one caller observing created=true.
// Deletes are idempotent so the saga's compensations are safe to retry.
type Store interface {
	// Get returns the installation or ErrInstallationNotFound.
	Get(ctx context.Context, tenantID uuid.UUID, code string) (Installation, error)

	// List returns every installation of the tenant.
	List(ctx context.Context, tenantID uuid.UUID) ([]Installation, error)

	// CreateIfAbsent atomically inserts the record unless one already
	// exists for its (tenant, code) key. Reports whether it inserted.
	CreateIfAbsent(ctx context.Context, inst Installation) (bool, error)

	// CreateBatch inserts each record with CreateIfAbsent semantics.
	// Existing records are left untouched. Used by tenant provisioning to
	// seed a fresh tenant's module set.
	CreateBatch(ctx context.Context, insts []Installation) error

	// Promote atomically flips an implicit installation to explicit and
	// stamps the update time. Promoting an already-explicit installation
	// is a no-op. Returns ErrInstallationNotFound when absent.
	Promote(ctx context.Context, tenantID uuid.UUID, code string) error

	// Update replaces the mutable fields of an existing installation.
	Update(ctx context.Context, inst Installation) error

	// Delete removes the installation if it exists.
	Delete(ctx context.Context, tenantID uuid.UUID, code string) error
}
