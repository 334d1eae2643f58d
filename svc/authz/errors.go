package authz

import (
	"errors"
	"fmt"
)

// ErrForbidden is the base class for every authorization denial.
// errors.Is(err, ErrForbidden) matches all of the specific denials below.
var ErrForbidden = errors.New("authz: forbidden")

var (
	// ErrNotMember is returned when the actor has no membership in the tenant.
	ErrNotMember = fmt.Errorf("%w: not a member of the tenant", ErrForbidden)

	// ErrMembershipDisabled is returned when the actor's membership is disabled.
	ErrMembershipDisabled = fmt.Errorf("%w: membership is disabled", ErrForbidden)

	// ErrPermissionDenied is returned when the actor's resolved permission
	// set does not satisfy the required permission.
	ErrPermissionDenied = fmt.Errorf("%w: insufficient permissions", ErrForbidden)

	// ErrSystemRole is returned when a protected operation targets a system role.
	ErrSystemRole = fmt.Errorf("%w: system roles cannot be deleted", ErrForbidden)

	// ErrRoleInUse is returned when deleting a role that still has assignees.
	ErrRoleInUse = fmt.Errorf("%w: role has active assignees", ErrForbidden)

	// ErrOwnerProtected is returned when an operation would disable,
	// reassign or remove the owner membership.
	ErrOwnerProtected = fmt.Errorf("%w: owner membership cannot be modified", ErrForbidden)
)

var (
	// ErrRoleNotFound is returned when a role does not exist in the tenant.
	ErrRoleNotFound = errors.New("authz: role not found")

	// ErrRoleExists is returned on a duplicate (tenant, role id) create.
	ErrRoleExists = errors.New("authz: role already exists")

	// ErrMembershipNotFound is returned when a (user, tenant) membership is absent.
	ErrMembershipNotFound = errors.New("authz: membership not found")

	// ErrMembershipExists is returned on a duplicate (user, tenant) create.
	ErrMembershipExists = errors.New("authz: membership already exists")

	// ErrValidation is returned for bad input to management operations.
	ErrValidation = errors.New("authz: invalid input")
)
