package module

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemStore is a thread-safe Store for tests and single-process use.
type InMemStore struct {
	mu       sync.RWMutex
	installs map[uuid.UUID]map[string]Installation
}

func NewInMemStore() *InMemStore {
	return &InMemStore{installs: make(map[uuid.UUID]map[string]Installation)}
}

func (s *InMemStore) Get(ctx context.Context, tenantID uuid.UUID, code string) (Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.installs[tenantID][code]
	if !ok {
		return Installation{}, ErrInstallationNotFound
	}
	return copyInstallation(inst), nil
}

func (s *InMemStore) List(ctx context.Context, tenantID uuid.UUID) ([]Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant := s.installs[tenantID]
	out := make([]Installation, 0, len(tenant))
	for _, inst := range tenant {
		out = append(out, copyInstallation(inst))
	}
	return out, nil
}

func (s *InMemStore) CreateIfAbsent(ctx context.Context, inst Installation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.installs[inst.TenantID]
	if !ok {
		tenant = make(map[string]Installation)
		s.installs[inst.TenantID] = tenant
	}
	if _, exists := tenant[inst.Code]; exists {
		return false, nil
	}
	tenant[inst.Code] = copyInstallation(inst)
	return true, nil
}

func (s *InMemStore) CreateBatch(ctx context.Context, insts []Installation) error {
	for _, inst := range insts {
		if _, err := s.CreateIfAbsent(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemStore) Promote(ctx context.Context, tenantID uuid.UUID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.installs[tenantID][code]
	if !ok {
		return ErrInstallationNotFound
	}
	if inst.Implicit {
		inst.Implicit = false
		if inst.Config != nil {
			inst.Config = maps.Clone(inst.Config)
			inst.Config["isImplicit"] = false
		}
		inst.UpdatedAt = time.Now().UTC()
		s.installs[tenantID][code] = inst
	}
	return nil
}

func (s *InMemStore) Update(ctx context.Context, inst Installation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.installs[inst.TenantID][inst.Code]; !ok {
		return ErrInstallationNotFound
	}
	s.installs[inst.TenantID][inst.Code] = copyInstallation(inst)
	return nil
}

func (s *InMemStore) Delete(ctx context.Context, tenantID uuid.UUID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.installs[tenantID], code)
	return nil
}

func copyInstallation(inst Installation) Installation {
	inst.Config = maps.Clone(inst.Config)
	return inst
}
