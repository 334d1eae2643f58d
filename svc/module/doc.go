// Package module manages per-tenant feature module installations.
//
// Activating a module installs its declared dependencies first, tagged as
// implicit; an implicit install is promoted to explicit in place when the
// module is later requested directly. The store contract demands an atomic
// insert-if-absent, so concurrent activations of the same (tenant, module)
// pair converge on a single record.
package module
