package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant: not found")

	// ErrTenantExists is the conflict error for a duplicate tenant name
	// under the same owner, or a duplicate id on create.
	ErrTenantExists = errors.New("tenant: already exists")

	// ErrSettingsNotFound is returned when a tenant's settings record is absent.
	ErrSettingsNotFound = errors.New("tenant: settings not found")

	// ErrValidation is returned for bad provisioning input before any
	// mutation has occurred; no rollback is involved.
	ErrValidation = errors.New("tenant: invalid input")

	// ErrCreationFailed wraps any error that aborted the provisioning saga
	// after mutations began. Rollback has been attempted by the time the
	// caller sees it.
	ErrCreationFailed = errors.New("tenant: creation failed, rollback attempted")

	// ErrRollbackFailed marks a failure while undoing a partially created
	// tenant. It is critical: orphaned partial state may remain and an
	// operator has to reconcile it. Never silently absorbed.
	ErrRollbackFailed = errors.New("tenant: rollback failed, manual cleanup required")

	// ErrInvalidIdentifier is returned when a request carries a malformed
	// tenant identifier.
	ErrInvalidIdentifier = errors.New("tenant: invalid identifier")

	// ErrNoTenantInContext is returned when no tenant is present in context.
	ErrNoTenantInContext = errors.New("tenant: no tenant in context")

	// ErrInactiveTenant is returned when a request resolves to a
	// deactivated tenant.
	ErrInactiveTenant = errors.New("tenant: inactive")
)
