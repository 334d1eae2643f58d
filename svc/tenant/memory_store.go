package tenant

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemStore is a thread-safe Store for tests and single-process use. It
// enforces the same (owner, name) uniqueness the Mongo store backs with a
// unique index; name comparison is case-insensitive.
type InMemStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]Tenant
}

func NewInMemStore() *InMemStore {
	return &InMemStore{tenants: make(map[uuid.UUID]Tenant)}
}

func (s *InMemStore) Create(ctx context.Context, t Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID]; exists {
		return ErrTenantExists
	}
	for _, existing := range s.tenants {
		if existing.OwnerID == t.OwnerID && strings.EqualFold(existing.Name, t.Name) {
			return ErrTenantExists
		}
	}
	s.tenants[t.ID] = copyTenant(t)
	return nil
}

func (s *InMemStore) Get(ctx context.Context, id uuid.UUID) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return Tenant{}, ErrTenantNotFound
	}
	return copyTenant(t), nil
}

func (s *InMemStore) GetByNameAndOwner(ctx context.Context, name string, ownerID uuid.UUID) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.OwnerID == ownerID && strings.EqualFold(t.Name, name) {
			return copyTenant(t), nil
		}
	}
	return Tenant{}, ErrTenantNotFound
}

func (s *InMemStore) GetBySubdomain(ctx context.Context, subdomain string) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Subdomain != "" && strings.EqualFold(t.Subdomain, subdomain) {
			return copyTenant(t), nil
		}
	}
	return Tenant{}, ErrTenantNotFound
}

func (s *InMemStore) Update(ctx context.Context, t Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[t.ID]; !ok {
		return ErrTenantNotFound
	}
	s.tenants[t.ID] = copyTenant(t)
	return nil
}

func (s *InMemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tenants, id)
	return nil
}

func copyTenant(t Tenant) Tenant {
	t.Modules = slices.Clone(t.Modules)
	return t
}

// InMemSettingsStore is a thread-safe SettingsStore for tests and
// single-process use.
type InMemSettingsStore struct {
	mu       sync.RWMutex
	settings map[uuid.UUID]Settings
}

func NewInMemSettingsStore() *InMemSettingsStore {
	return &InMemSettingsStore{settings: make(map[uuid.UUID]Settings)}
}

func (s *InMemSettingsStore) Create(ctx context.Context, set Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settings[set.TenantID]; exists {
		return ErrTenantExists
	}
	s.settings[set.TenantID] = set
	return nil
}

func (s *InMemSettingsStore) Get(ctx context.Context, tenantID uuid.UUID) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.settings[tenantID]
	if !ok {
		return Settings{}, ErrSettingsNotFound
	}
	return set, nil
}

func (s *InMemSettingsStore) Update(ctx context.Context, set Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settings[set.TenantID]; !ok {
		return ErrSettingsNotFound
	}
	s.settings[set.TenantID] = set
	return nil
}

func (s *InMemSettingsStore) Delete(ctx context.Context, tenantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.settings, tenantID)
	return nil
}
