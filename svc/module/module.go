package module

import (
	"time"

	"github.com/google/uuid"
)

// InitStatus describes how far a module's own seeding has progressed.
// Module-specific initialization flows (external to this core) move the
// status and flip Initialized.
type InitStatus string

const (
	StatusPending    InitStatus = "pending"
	StatusInProgress InitStatus = "in_progress"
	StatusComplete   InitStatus = "complete"
)

// Installation is the per-tenant record of an activated module, keyed by
// (tenant, module code).
type Installation struct {
	TenantID    uuid.UUID
	Code        string
	Initialized bool
	Status      InitStatus
	// Config holds free-form module configuration.
	Config map[string]any
	// Implicit marks a dependency-only install. An implicit installation
	// is promoted to explicit in place when the module is later requested
	// directly; no second record is ever created.
	Implicit  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
