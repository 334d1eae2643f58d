// Package mongo bootstraps the MongoDB client used by the persistent store
// implementations in the svc packages.
//
// The ERP core keeps each aggregate in its own collection and offers no
// cross-collection transactions; the provisioning saga compensates for that
// at the application level. What this package guarantees is a verified,
// pooled client with retrying connect and a healthcheck probe.
package mongo
