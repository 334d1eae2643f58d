package tenant

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated customer organization ("company") owning its own
// roles, memberships and module installations.
type Tenant struct {
	ID      uuid.UUID
	Name    string
	OwnerID uuid.UUID
	// Subdomain optionally identifies the tenant in HTTP requests
	// (e.g. "acme" in acme.example.com). Empty when unused.
	Subdomain    string
	BaseCurrency string
	// FiscalYearStart is the month the fiscal year begins.
	// Defaults to January (calendar year).
	FiscalYearStart time.Month
	// Modules mirrors the installed module codes for display convenience.
	// The module installation store is authoritative.
	Modules   []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings holds tenant-local presentation preferences, seeded during
// provisioning with caller-supplied or default values.
type Settings struct {
	TenantID   uuid.UUID
	Timezone   string
	DateFormat string
	Language   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Default values applied by the provisioning saga when the caller leaves
// settings fields empty.
const (
	DefaultTimezone   = "UTC"
	DefaultDateFormat = "YYYY-MM-DD"
	DefaultLanguage   = "en"
	DefaultCurrency   = "USD"
)
