// Package registry holds the static catalogs the ERP core is configured
// with: installable modules and their permission definitions, curated
// bundles, and the module dependency table.
//
// The catalog is read-only configuration. It is validated and loaded once
// per process (built-in defaults or a YAML file) and injected into the
// permission resolver, the module activation service and the provisioning
// saga; components never reach for a process-wide mutable singleton.
package registry
