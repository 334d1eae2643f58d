// Package authz implements tenant-scoped access control: roles with
// explicit grants and attached module permission bundles, memberships with
// owner and disabled flags, the permission resolver that maintains each
// role's cached effective permission set, and the authorization checker
// every privileged operation flows through.
//
// Resolution is a materialized view: the Resolver recomputes a role's
// Resolved field synchronously at every mutation point of its inputs.
// Authorization reads the cache and falls back to a pure computation when
// the cache was never populated.
//
// Store contracts are storage-agnostic. In-memory implementations back
// tests and single-process use; MongoDB implementations rely on compound
// document keys for atomic insert-if-absent semantics.
package authz
