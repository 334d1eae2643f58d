package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/mahmudadem/erpcore/pkg/logger"
	"github.com/mahmudadem/erpcore/pkg/statemachine"
	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/module"
	"github.com/mahmudadem/erpcore/svc/registry"
)

// Saga lifecycle states. The backing store offers no multi-entity
// transactions, so provisioning runs as a compensating-transaction saga:
// strictly ordered steps, each undone in reverse order on failure.
const (
	StateNotStarted         = statemachine.StringState("not_started")
	StateTenantCreated      = statemachine.StringState("tenant_created")
	StateRolesCreated       = statemachine.StringState("roles_created")
	StateMembershipAssigned = statemachine.StringState("membership_assigned")
	StateModulesCreated     = statemachine.StringState("modules_created")
	StateComplete           = statemachine.StringState("complete")
	StateRollingBack        = statemachine.StringState("rolling_back")
	StateFailed             = statemachine.StringState("failed")
)

const (
	eventTenantCreated      = statemachine.StringEvent("tenant_created")
	eventRolesSeeded        = statemachine.StringEvent("roles_seeded")
	eventMembershipAssigned = statemachine.StringEvent("membership_assigned")
	eventModulesInstalled   = statemachine.StringEvent("modules_installed")
	eventCompleted          = statemachine.StringEvent("completed")
	eventFailed             = statemachine.StringEvent("failed")
	eventRolledBack         = statemachine.StringEvent("rolled_back")
)

// newSagaMachine builds the per-run lifecycle machine. Rolling back is
// reachable from every state that has mutations to undo; a validation
// failure before any mutation goes straight to failed.
func newSagaMachine() *statemachine.Machine {
	return statemachine.MustNew(StateNotStarted,
		statemachine.Transition{From: StateNotStarted, To: StateTenantCreated, Event: eventTenantCreated},
		statemachine.Transition{From: StateTenantCreated, To: StateRolesCreated, Event: eventRolesSeeded},
		statemachine.Transition{From: StateRolesCreated, To: StateMembershipAssigned, Event: eventMembershipAssigned},
		statemachine.Transition{From: StateMembershipAssigned, To: StateModulesCreated, Event: eventModulesInstalled},
		statemachine.Transition{From: StateModulesCreated, To: StateComplete, Event: eventCompleted},

		statemachine.Transition{From: StateNotStarted, To: StateFailed, Event: eventFailed},
		statemachine.Transition{From: StateTenantCreated, To: StateRollingBack, Event: eventFailed},
		statemachine.Transition{From: StateRolesCreated, To: StateRollingBack, Event: eventFailed},
		statemachine.Transition{From: StateMembershipAssigned, To: StateRollingBack, Event: eventFailed},
		statemachine.Transition{From: StateModulesCreated, To: StateRollingBack, Event: eventFailed},
		statemachine.Transition{From: StateRollingBack, To: StateFailed, Event: eventRolledBack},
	)
}

// Provisioner orchestrates tenant creation: the tenant aggregate, its
// settings, the three system roles with resolved permission caches, the
// owner membership and the module installation records.
type Provisioner struct {
	tenants     Store
	settings    SettingsStore
	roles       authz.RoleStore
	memberships authz.MembershipStore
	resolver    *authz.Resolver
	installs    module.Store
	catalog     *registry.Registry
	users       UserDirectory  // optional
	seeder      TemplateSeeder // optional
	log         *slog.Logger
}

// ProvisionerDeps bundles the collaborators of a Provisioner. Users and
// Seeder are optional; everything else is required.
type ProvisionerDeps struct {
	Tenants     Store
	Settings    SettingsStore
	Roles       authz.RoleStore
	Memberships authz.MembershipStore
	Resolver    *authz.Resolver
	Installs    module.Store
	Catalog     *registry.Registry
	Users       UserDirectory
	Seeder      TemplateSeeder
	Log         *slog.Logger
}

// NewProvisioner builds the provisioning saga orchestrator.
func NewProvisioner(deps ProvisionerDeps) *Provisioner {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Provisioner{
		tenants:     deps.Tenants,
		settings:    deps.Settings,
		roles:       deps.Roles,
		memberships: deps.Memberships,
		resolver:    deps.Resolver,
		installs:    deps.Installs,
		catalog:     deps.Catalog,
		users:       deps.Users,
		seeder:      deps.Seeder,
		log:         deps.Log,
	}
}

// CreateTenantParams is the input to CreateTenant. Zero-valued optional
// fields fall back to the package defaults.
type CreateTenantParams struct {
	CreatorID uuid.UUID
	Name      string
	BundleID  string

	Subdomain       string
	BaseCurrency    string
	FiscalYearStart time.Month

	Timezone   string
	DateFormat string
	Language   string
}

func (p *CreateTenantParams) normalize() error {
	if p.CreatorID == uuid.Nil {
		return fmt.Errorf("%w: creator id is required", ErrValidation)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: tenant name is required", ErrValidation)
	}
	if p.BundleID == "" {
		return fmt.Errorf("%w: bundle id is required", ErrValidation)
	}
	if p.BaseCurrency == "" {
		p.BaseCurrency = DefaultCurrency
	}
	if p.FiscalYearStart == 0 {
		p.FiscalYearStart = time.January
	}
	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if p.DateFormat == "" {
		p.DateFormat = DefaultDateFormat
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if _, err := language.Parse(p.Language); err != nil {
		return fmt.Errorf("%w: invalid language %q", ErrValidation, p.Language)
	}
	return nil
}

// CreateTenant runs the provisioning saga and returns the new tenant's id.
//
// Validation and conflict errors surface before any mutation. Any failure
// after that triggers a reverse-order rollback of the completed steps; the
// original error is re-raised wrapped in ErrCreationFailed, joined with
// ErrRollbackFailed when compensation itself failed.
func (p *Provisioner) CreateTenant(ctx context.Context, params CreateTenantParams) (uuid.UUID, error) {
	machine := newSagaMachine()

	fail := func(err error) {
		if ferr := machine.Fire(ctx, eventFailed, nil); ferr != nil {
			p.log.ErrorContext(ctx, "saga state machine rejected failure event", logger.Error(ferr))
		}
	}

	// Steps 1-2: pure validation, no mutations yet.
	if err := params.normalize(); err != nil {
		fail(err)
		return uuid.Nil, err
	}

	if _, err := p.tenants.GetByNameAndOwner(ctx, params.Name, params.CreatorID); err == nil {
		fail(ErrTenantExists)
		return uuid.Nil, fmt.Errorf("%w: %q", ErrTenantExists, params.Name)
	} else if !errors.Is(err, ErrTenantNotFound) {
		fail(err)
		return uuid.Nil, fmt.Errorf("check duplicate name: %w", err)
	}

	bundle, ok := p.catalog.Bundle(params.BundleID)
	if !ok {
		fail(registry.ErrUnknownBundle)
		return uuid.Nil, fmt.Errorf("%w: %q", registry.ErrUnknownBundle, params.BundleID)
	}

	// The final module set is the bundle's modules plus the mandatory
	// administrative module.
	moduleSet := slices.Clone(bundle.Modules)
	if !slices.Contains(moduleSet, registry.AdminModule) {
		moduleSet = append(moduleSet, registry.AdminModule)
	}

	now := time.Now().UTC()
	t := Tenant{
		ID:              uuid.New(),
		Name:            params.Name,
		OwnerID:         params.CreatorID,
		Subdomain:       params.Subdomain,
		BaseCurrency:    params.BaseCurrency,
		FiscalYearStart: params.FiscalYearStart,
		Modules:         moduleSet,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	log := p.log.With(logger.TenantID(t.ID), logger.UserID(params.CreatorID))

	// Step 3: persist the tenant aggregate.
	if err := p.tenants.Create(ctx, t); err != nil {
		fail(err)
		if errors.Is(err, ErrTenantExists) {
			// Lost the race to a concurrent creation; the unique
			// constraint is authoritative over the step-1 guard.
			return uuid.Nil, fmt.Errorf("%w: %q", ErrTenantExists, params.Name)
		}
		return uuid.Nil, fmt.Errorf("create tenant: %w", err)
	}
	if err := machine.Fire(ctx, eventTenantCreated, nil); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, err)
	}

	// Step 4: seed tenant-local settings.
	if err := p.settings.Create(ctx, Settings{
		TenantID:   t.ID,
		Timezone:   params.Timezone,
		DateFormat: params.DateFormat,
		Language:   params.Language,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, fmt.Errorf("seed settings: %w", err))
	}

	// Steps 5-6: seed system roles and resolve their permission caches.
	if err := p.seedRoles(ctx, t.ID, moduleSet); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, err)
	}
	if err := machine.Fire(ctx, eventRolesSeeded, nil); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, err)
	}

	// Step 7: assign the creator as owner.
	if err := p.memberships.Create(ctx, authz.Membership{
		UserID:    params.CreatorID,
		TenantID:  t.ID,
		RoleID:    authz.RoleOwner,
		IsOwner:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, fmt.Errorf("assign owner membership: %w", err))
	}
	if err := machine.Fire(ctx, eventMembershipAssigned, nil); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, err)
	}

	// Step 8: best-effort UX convenience, never failure-critical.
	if p.users != nil {
		if err := p.users.SetActiveTenant(ctx, params.CreatorID, t.ID); err != nil {
			log.WarnContext(ctx, "failed to set creator's active tenant", logger.Error(err))
		}
	}

	// Step 9: batch-create explicit installation records for the module set.
	installs := make([]module.Installation, 0, len(moduleSet))
	for _, code := range moduleSet {
		installs = append(installs, module.Installation{
			TenantID:    t.ID,
			Code:        code,
			Initialized: true,
			Status:      module.StatusComplete,
			Config:      map[string]any{"isImplicit": false},
			Implicit:    false,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := p.installs.CreateBatch(ctx, installs); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, fmt.Errorf("install modules: %w", err))
	}
	if err := machine.Fire(ctx, eventModulesInstalled, nil); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, err)
	}

	// Step 10: best-effort template seeding; log and swallow.
	if p.seeder != nil {
		if err := p.seeder.SeedDefaults(ctx, t.ID); err != nil {
			log.WarnContext(ctx, "template seeding failed", logger.Error(err))
		}
	}

	if err := machine.Fire(ctx, eventCompleted, nil); err != nil {
		return uuid.Nil, p.abort(ctx, machine, t, moduleSet, err)
	}

	log.InfoContext(ctx, "tenant provisioned", slog.String("bundle", params.BundleID))
	return t.ID, nil
}

// seedRoles creates the three system roles with fixed ids and resolves the
// permission caches of the privileged two. Creation is idempotent: a role
// that already exists is skipped, which makes saga re-entry safe.
func (p *Provisioner) seedRoles(ctx context.Context, tenantID uuid.UUID, moduleSet []string) error {
	now := time.Now().UTC()
	seeded := []authz.Role{
		{
			ID:          authz.RoleOwner,
			TenantID:    tenantID,
			Name:        "Owner",
			Description: "Unrestricted tenant owner",
			Permissions: []string{"*"},
			System:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          authz.RoleAdmin,
			TenantID:    tenantID,
			Name:        "Administrator",
			Description: "Full access to the tenant's installed modules",
			Modules:     slices.Clone(moduleSet),
			System:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          authz.RoleMember,
			TenantID:    tenantID,
			Name:        "Member",
			Description: "Unprivileged member",
			System:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, role := range seeded {
		if err := p.roles.Create(ctx, role); err != nil {
			if errors.Is(err, authz.ErrRoleExists) {
				continue
			}
			return fmt.Errorf("seed role %s: %w", role.ID, err)
		}
	}

	// Resolve caches before first use; MEMBER has nothing to resolve but
	// going through the resolver keeps its cache consistent too.
	for _, roleID := range []string{authz.RoleOwner, authz.RoleAdmin} {
		found, err := p.resolver.ResolveRole(ctx, tenantID, roleID)
		if err != nil {
			return fmt.Errorf("resolve seeded role %s: %w", roleID, err)
		}
		if !found {
			return fmt.Errorf("resolve seeded role %s: %w", roleID, authz.ErrRoleNotFound)
		}
	}
	return nil
}

// abort transitions the saga into rolling_back, compensates completed steps
// in reverse order and returns the original error wrapped with the rollback
// outcome.
func (p *Provisioner) abort(ctx context.Context, machine *statemachine.Machine, t Tenant, moduleSet []string, cause error) error {
	log := p.log.With(logger.TenantID(t.ID))
	log.ErrorContext(ctx, "tenant provisioning failed, rolling back", logger.Error(cause))

	if err := machine.Fire(ctx, eventFailed, nil); err != nil {
		log.ErrorContext(ctx, "saga state machine rejected failure event", logger.Error(err))
	}

	rollbackErr := p.rollback(ctx, t, moduleSet)

	if err := machine.Fire(ctx, eventRolledBack, nil); err != nil {
		log.ErrorContext(ctx, "saga state machine rejected rollback event", logger.Error(err))
	}

	if rollbackErr != nil {
		// Critical: orphaned partial state may remain. This is distinct
		// from the original failure and must stay operator-visible.
		log.ErrorContext(ctx, "tenant rollback failed, manual cleanup required",
			logger.Errors(cause, rollbackErr))
		return errors.Join(ErrCreationFailed, cause, ErrRollbackFailed, rollbackErr)
	}

	return errors.Join(ErrCreationFailed, cause)
}

// rollback undoes the saga's mutations in reverse step order. Every
// compensating delete is idempotent, so compensating a step that never ran
// is harmless and repeated rollback attempts are safe. One failing deletion
// never prevents attempting the rest.
func (p *Provisioner) rollback(ctx context.Context, t Tenant, moduleSet []string) error {
	log := p.log.With(logger.TenantID(t.ID))
	var errs []error

	// Module installations, one by one; individual failures are collected.
	for _, code := range moduleSet {
		if err := p.installs.Delete(ctx, t.ID, code); err != nil {
			log.ErrorContext(ctx, "rollback: failed to delete module installation",
				logger.ModuleCode(code), logger.Error(err))
			errs = append(errs, fmt.Errorf("delete installation %s: %w", code, err))
		}
	}

	// Owner membership.
	if err := p.memberships.Delete(ctx, t.OwnerID, t.ID); err != nil {
		log.ErrorContext(ctx, "rollback: failed to delete owner membership", logger.Error(err))
		errs = append(errs, fmt.Errorf("delete owner membership: %w", err))
	}

	// Seeded roles by fixed id.
	for _, roleID := range []string{authz.RoleOwner, authz.RoleAdmin, authz.RoleMember} {
		if err := p.roles.Delete(ctx, t.ID, roleID); err != nil {
			log.ErrorContext(ctx, "rollback: failed to delete role",
				logger.RoleID(roleID), logger.Error(err))
			errs = append(errs, fmt.Errorf("delete role %s: %w", roleID, err))
		}
	}

	// Settings, then the tenant aggregate itself.
	if err := p.settings.Delete(ctx, t.ID); err != nil {
		log.ErrorContext(ctx, "rollback: failed to delete settings", logger.Error(err))
		errs = append(errs, fmt.Errorf("delete settings: %w", err))
	}
	if err := p.tenants.Delete(ctx, t.ID); err != nil {
		log.ErrorContext(ctx, "rollback: failed to delete tenant", logger.Error(err))
		errs = append(errs, fmt.Errorf("delete tenant: %w", err))
	}

	return errors.Join(errs...)
}
