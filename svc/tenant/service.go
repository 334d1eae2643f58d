package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/mahmudadem/erpcore/pkg/logger"
	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/module"
)

// Service covers day-two tenant management: profile and settings updates,
// lookups and the administrative cascade deletion. Provisioning itself is
// the Provisioner's job.
type Service struct {
	tenants     Store
	settings    SettingsStore
	roles       authz.RoleStore
	memberships authz.MembershipStore
	installs    module.Store
	log         *slog.Logger
}

// NewService builds a tenant management service.
func NewService(tenants Store, settings SettingsStore, roles authz.RoleStore, memberships authz.MembershipStore, installs module.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		tenants:     tenants,
		settings:    settings,
		roles:       roles,
		memberships: memberships,
		installs:    installs,
		log:         log,
	}
}

// Get returns the tenant by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	return s.tenants.Get(ctx, id)
}

// GetSettings returns the tenant's settings.
func (s *Service) GetSettings(ctx context.Context, id uuid.UUID) (Settings, error) {
	return s.settings.Get(ctx, id)
}

// UpdateProfileParams carries the mutable profile fields. Nil pointers leave
// the current value untouched.
type UpdateProfileParams struct {
	Name            *string
	Subdomain       *string
	BaseCurrency    *string
	FiscalYearStart *time.Month
	Active          *bool
}

// UpdateProfile applies a partial profile update. Renames are guarded by the
// same per-owner name uniqueness rule as creation.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Tenant, error) {
	t, err := s.tenants.Get(ctx, id)
	if err != nil {
		return Tenant{}, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return Tenant{}, fmt.Errorf("%w: tenant name is required", ErrValidation)
		}
		if !strings.EqualFold(name, t.Name) {
			if other, err := s.tenants.GetByNameAndOwner(ctx, name, t.OwnerID); err == nil && other.ID != t.ID {
				return Tenant{}, fmt.Errorf("%w: %q", ErrTenantExists, name)
			} else if err != nil && !errors.Is(err, ErrTenantNotFound) {
				return Tenant{}, fmt.Errorf("check duplicate name: %w", err)
			}
		}
		t.Name = name
	}
	if params.Subdomain != nil {
		t.Subdomain = strings.ToLower(strings.TrimSpace(*params.Subdomain))
	}
	if params.BaseCurrency != nil {
		if *params.BaseCurrency == "" {
			return Tenant{}, fmt.Errorf("%w: base currency cannot be empty", ErrValidation)
		}
		t.BaseCurrency = strings.ToUpper(*params.BaseCurrency)
	}
	if params.FiscalYearStart != nil {
		if *params.FiscalYearStart < time.January || *params.FiscalYearStart > time.December {
			return Tenant{}, fmt.Errorf("%w: invalid fiscal year start month", ErrValidation)
		}
		t.FiscalYearStart = *params.FiscalYearStart
	}
	if params.Active != nil {
		t.Active = *params.Active
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.tenants.Update(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("update tenant: %w", err)
	}
	return t, nil
}

// UpdateSettingsParams carries the mutable settings fields. Nil pointers
// leave the current value untouched.
type UpdateSettingsParams struct {
	Timezone   *string
	DateFormat *string
	Language   *string
}

// UpdateSettings applies a partial settings update.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, params UpdateSettingsParams) (Settings, error) {
	set, err := s.settings.Get(ctx, id)
	if err != nil {
		return Settings{}, err
	}

	if params.Timezone != nil {
		if _, err := time.LoadLocation(*params.Timezone); err != nil {
			return Settings{}, fmt.Errorf("%w: invalid timezone %q", ErrValidation, *params.Timezone)
		}
		set.Timezone = *params.Timezone
	}
	if params.DateFormat != nil {
		if *params.DateFormat == "" {
			return Settings{}, fmt.Errorf("%w: date format cannot be empty", ErrValidation)
		}
		set.DateFormat = *params.DateFormat
	}
	if params.Language != nil {
		if _, err := language.Parse(*params.Language); err != nil {
			return Settings{}, fmt.Errorf("%w: invalid language %q", ErrValidation, *params.Language)
		}
		set.Language = *params.Language
	}
	set.UpdatedAt = time.Now().UTC()

	if err := s.settings.Update(ctx, set); err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return set, nil
}

// Delete removes a tenant and all of its dependent records: module
// installations, memberships, roles and settings, then the tenant itself.
// It is an administrative operation with no undo.
//
// Deletion runs leaf-first so an interrupted run never leaves dependents
// pointing at a missing tenant; re-running completes the cleanup because
// every store delete is idempotent.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tenants.Get(ctx, id); err != nil {
		return err
	}

	log := s.log.With(logger.TenantID(id))
	var errs []error

	installs, err := s.installs.List(ctx, id)
	if err != nil {
		errs = append(errs, fmt.Errorf("list installations: %w", err))
	}
	for _, inst := range installs {
		if err := s.installs.Delete(ctx, id, inst.Code); err != nil {
			errs = append(errs, fmt.Errorf("delete installation %s: %w", inst.Code, err))
		}
	}

	members, err := s.memberships.ListByTenant(ctx, id)
	if err != nil {
		errs = append(errs, fmt.Errorf("list memberships: %w", err))
	}
	for _, m := range members {
		if err := s.memberships.Delete(ctx, m.UserID, id); err != nil {
			errs = append(errs, fmt.Errorf("delete membership %s: %w", m.UserID, err))
		}
	}

	roles, err := s.roles.ListByTenant(ctx, id)
	if err != nil {
		errs = append(errs, fmt.Errorf("list roles: %w", err))
	}
	for _, r := range roles {
		if err := s.roles.Delete(ctx, id, r.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete role %s: %w", r.ID, err))
		}
	}

	if err := s.settings.Delete(ctx, id); err != nil {
		errs = append(errs, fmt.Errorf("delete settings: %w", err))
	}

	if len(errs) > 0 {
		// Leave the tenant record in place so the cascade can be retried.
		err := errors.Join(errs...)
		log.ErrorContext(ctx, "tenant cascade deletion incomplete", logger.Error(err))
		return fmt.Errorf("delete tenant %s: %w", id, err)
	}

	if err := s.tenants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tenant %s: %w", id, err)
	}

	log.InfoContext(ctx, "tenant deleted")
	return nil
}
