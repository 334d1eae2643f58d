// Package tenant provides the tenant aggregate, its provisioning saga and
// HTTP tenant resolution.
//
// Provisioning creates a tenant, its settings, three system roles, the
// creator's owner membership and the installation records of the chosen
// module bundle. The backing store has no multi-entity transactions, so
// the Provisioner runs these steps as a saga and compensates completed
// steps in reverse order when a later one fails.
//
// Request handling resolves tenants from subdomains, headers or path
// segments via a Provider that fronts the store with a cache, and injects
// the result into the request context.
package tenant
