package module

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/pkg/logger"
	"github.com/mahmudadem/erpcore/svc/registry"
)

// Service activates feature modules for tenants, silently installing the
// foundational modules a requested module depends on.
type Service struct {
	store   Store
	catalog *registry.Registry
	log     *slog.Logger
}

// NewService builds the activation service. log may be nil.
func NewService(store Store, catalog *registry.Registry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, catalog: catalog, log: log}
}

// Activate ensures the module and, transitively, its declared dependencies
// each have an installation record for the tenant. Dependencies are tagged
// implicit; the requested module is explicit. Re-activating an implicitly
// installed module promotes it in place.
//
// The operation is idempotent: activating the same module twice leaves
// exactly one record per module.
func (s *Service) Activate(ctx context.Context, tenantID uuid.UUID, code string) error {
	if _, ok := s.catalog.Module(code); !ok {
		return fmt.Errorf("%w: %s", registry.ErrUnknownModule, code)
	}

	for _, dep := range s.catalog.Closure(code) {
		if err := s.ensureInstalled(ctx, tenantID, dep, true); err != nil {
			return fmt.Errorf("activate dependency %s of %s: %w", dep, code, err)
		}
	}
	if err := s.ensureInstalled(ctx, tenantID, code, false); err != nil {
		return fmt.Errorf("activate %s: %w", code, err)
	}
	return nil
}

// ensureInstalled creates the installation record if absent, or promotes an
// implicit record when the caller requested explicit activation. Dependency
// modules are installed in a foundational, already-usable state; module
// specific seeding of that foundation is an external collaborator invoked
// afterwards.
func (s *Service) ensureInstalled(ctx context.Context, tenantID uuid.UUID, code string, implicit bool) error {
	now := time.Now().UTC()
	created, err := s.store.CreateIfAbsent(ctx, Installation{
		TenantID:    tenantID,
		Code:        code,
		Initialized: true,
		Status:      StatusComplete,
		Config:      map[string]any{"isImplicit": implicit},
		Implicit:    implicit,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}
	if created {
		s.log.InfoContext(ctx, "module installed",
			logger.TenantID(tenantID), logger.ModuleCode(code), slog.Bool("implicit", implicit))
		return nil
	}

	// Record already present. Only an explicit request promotes it.
	if implicit {
		return nil
	}
	if err := s.store.Promote(ctx, tenantID, code); err != nil {
		return err
	}
	return nil
}

// ListActive returns the tenant's installation records. By default the
// dependency-only (implicit) installs are filtered out, since they are not
// part of what the tenant explicitly sees.
func (s *Service) ListActive(ctx context.Context, tenantID uuid.UUID, includeImplicit bool) ([]Installation, error) {
	installs, err := s.store.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if includeImplicit {
		return installs, nil
	}

	out := installs[:0]
	for _, inst := range installs {
		if !inst.Implicit {
			out = append(out, inst)
		}
	}
	return out, nil
}
