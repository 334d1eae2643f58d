// Package company composes the tenant, module and authorization services
// into the HTTP surface for company administration: company creation,
// profile and settings management, module activation, and role and member
// administration. Routes under /company resolve the target tenant from the
// request and enforce the companyAdmin permissions.
package company
