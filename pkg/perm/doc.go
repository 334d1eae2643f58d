// Package perm implements the permission string algebra used by the
// authorization layer.
//
// Permissions are dotted, hierarchical identifiers owned by feature modules,
// e.g. "accounting.vouchers.approve". A grant satisfies a required permission
// if it is the global wildcard "*", an exact match, or a strict dotted prefix
// of the requirement (a coarse grant covers all of its children).
//
// The package is pure and allocation-light; it carries no storage or context
// dependencies so both the resolver and the checker can share it.
package perm
