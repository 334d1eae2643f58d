package module_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmudadem/erpcore/svc/module"
	"github.com/mahmudadem/erpcore/svc/registry"
)

func newService(t *testing.T) (*module.Service, *module.InMemStore) {
	t.Helper()
	store := module.NewInMemStore()
	return module.NewService(store, registry.Default(), nil), store
}

func TestServiceActivate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("installs module without dependencies", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t)
		tenantID := uuid.New()

		require.NoError(t, svc.Activate(ctx, tenantID, "accounting"))

		inst, err := store.Get(ctx, tenantID, "accounting")
		require.NoError(t, err)
		assert.False(t, inst.Implicit)
		assert.True(t, inst.Initialized)
		assert.Equal(t, module.StatusComplete, inst.Status)
		assert.Equal(t, false, inst.Config["isImplicit"])
	})

	t.Run("installs dependencies implicitly", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t)
		tenantID := uuid.New()

		// procurement depends on accounting and inventory.
		require.NoError(t, svc.Activate(ctx, tenantID, "procurement"))

		target, err := store.Get(ctx, tenantID, "procurement")
		require.NoError(t, err)
		assert.False(t, target.Implicit)

		for _, dep := range []string{"accounting", "inventory"} {
			inst, err := store.Get(ctx, tenantID, dep)
			require.NoError(t, err)
			assert.True(t, inst.Implicit, dep)
			assert.True(t, inst.Initialized, dep)
			assert.Equal(t, true, inst.Config["isImplicit"], dep)
		}
	})

	t.Run("walks transitive dependencies", func(t *testing.T) {
		t.Parallel()

		// The table lists only direct dependencies; the whole chain must
		// still be installed.
		catalog := registry.MustNew(registry.Config{
			Modules: []registry.Module{
				{Code: "reporting", Name: "Reporting"},
				{Code: "ledger", Name: "Ledger"},
				{Code: "core", Name: "Core"},
			},
			Dependencies: map[string][]string{
				"reporting": {"ledger"},
				"ledger":    {"core"},
			},
		})
		store := module.NewInMemStore()
		svc := module.NewService(store, catalog, nil)
		tenantID := uuid.New()

		require.NoError(t, svc.Activate(ctx, tenantID, "reporting"))

		for _, dep := range []string{"ledger", "core"} {
			inst, err := store.Get(ctx, tenantID, dep)
			require.NoError(t, err, dep)
			assert.True(t, inst.Implicit, dep)
		}
		target, err := store.Get(ctx, tenantID, "reporting")
		require.NoError(t, err)
		assert.False(t, target.Implicit)
	})

	t.Run("unknown module", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t)
		err := svc.Activate(ctx, uuid.New(), "warpdrive")
		require.ErrorIs(t, err, registry.ErrUnknownModule)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t)
		tenantID := uuid.New()

		require.NoError(t, svc.Activate(ctx, tenantID, "hr"))
		require.NoError(t, svc.Activate(ctx, tenantID, "hr"))

		installs, err := store.List(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, installs, 2) // hr plus its accounting dependency
	})

	t.Run("explicit activation promotes implicit install", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t)
		tenantID := uuid.New()

		// accounting arrives implicitly as a dependency of hr.
		require.NoError(t, svc.Activate(ctx, tenantID, "hr"))
		inst, err := store.Get(ctx, tenantID, "accounting")
		require.NoError(t, err)
		require.True(t, inst.Implicit)

		require.NoError(t, svc.Activate(ctx, tenantID, "accounting"))
		inst, err = store.Get(ctx, tenantID, "accounting")
		require.NoError(t, err)
		assert.False(t, inst.Implicit)
		assert.Equal(t, false, inst.Config["isImplicit"])
	})

	t.Run("explicit install is never demoted by dependency activation", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t)
		tenantID := uuid.New()

		require.NoError(t, svc.Activate(ctx, tenantID, "accounting"))
		require.NoError(t, svc.Activate(ctx, tenantID, "hr"))

		inst, err := store.Get(ctx, tenantID, "accounting")
		require.NoError(t, err)
		assert.False(t, inst.Implicit)
	})

	t.Run("dependencies stay installed independently", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t)
		tenantID := uuid.New()

		require.NoError(t, svc.Activate(ctx, tenantID, "sales"))
		require.NoError(t, store.Delete(ctx, tenantID, "sales"))

		// inventory was installed for sales but has its own lifecycle.
		inst, err := store.Get(ctx, tenantID, "inventory")
		require.NoError(t, err)
		assert.True(t, inst.Implicit)
	})
}

func TestServiceListActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newService(t)
	tenantID := uuid.New()

	require.NoError(t, svc.Activate(ctx, tenantID, "procurement"))

	visible, err := svc.ListActive(ctx, tenantID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "procurement", visible[0].Code)

	all, err := svc.ListActive(ctx, tenantID, true)
	require.NoError(t, err)
	codes := make([]string, 0, len(all))
	for _, inst := range all {
		codes = append(codes, inst.Code)
	}
	assert.ElementsMatch(t, []string{"procurement", "accounting", "inventory"}, codes)
}

func TestStoreCreateBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := module.NewInMemStore()
	tenantID := uuid.New()

	batch := []module.Installation{
		{TenantID: tenantID, Code: "accounting", Status: module.StatusComplete, Initialized: true},
		{TenantID: tenantID, Code: "inventory", Status: module.StatusComplete, Initialized: true},
	}
	require.NoError(t, store.CreateBatch(ctx, batch))
	// Re-running the batch is a no-op, not a conflict.
	require.NoError(t, store.CreateBatch(ctx, batch))

	installs, err := store.List(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, installs, 2)
}
