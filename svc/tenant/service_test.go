package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmudadem/erpcore/svc/tenant"
)

type serviceFixture struct {
	*sagaFixture
	svc *tenant.Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := newSagaFixture(t, fixtureOverrides{})
	return &serviceFixture{
		sagaFixture: f,
		svc: tenant.NewService(
			f.tenants, f.settings,
			f.roles, f.memberships, f.installs, nil,
		),
	}
}

func (f *serviceFixture) provision(t *testing.T, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()
	id, err := f.provisioner.CreateTenant(context.Background(), tenant.CreateTenantParams{
		CreatorID: owner,
		Name:      name,
		BundleID:  "starter",
	})
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string           { return &s }
func monthPtr(m time.Month) *time.Month { return &m }
func boolPtr(b bool) *bool              { return &b }

func TestServiceUpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		id := f.provision(t, uuid.New(), "Acme")

		updated, err := f.svc.UpdateProfile(ctx, id, tenant.UpdateProfileParams{
			Name:            strPtr("Acme GmbH"),
			BaseCurrency:    strPtr("eur"),
			FiscalYearStart: monthPtr(time.July),
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme GmbH", updated.Name)
		assert.Equal(t, "EUR", updated.BaseCurrency)
		assert.Equal(t, time.July, updated.FiscalYearStart)
		assert.True(t, updated.Active)
	})

	t.Run("rename to another tenant's name is rejected", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		owner := uuid.New()
		f.provision(t, owner, "First")
		second := f.provision(t, owner, "Second")

		_, err := f.svc.UpdateProfile(ctx, second, tenant.UpdateProfileParams{
			Name: strPtr("first"),
		})
		require.ErrorIs(t, err, tenant.ErrTenantExists)
	})

	t.Run("rename to own name with different casing is allowed", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		id := f.provision(t, uuid.New(), "Acme")

		updated, err := f.svc.UpdateProfile(ctx, id, tenant.UpdateProfileParams{
			Name: strPtr("ACME"),
		})
		require.NoError(t, err)
		assert.Equal(t, "ACME", updated.Name)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		id := f.provision(t, uuid.New(), "Acme")

		_, err := f.svc.UpdateProfile(ctx, id, tenant.UpdateProfileParams{Name: strPtr("  ")})
		require.ErrorIs(t, err, tenant.ErrValidation)

		_, err = f.svc.UpdateProfile(ctx, id, tenant.UpdateProfileParams{FiscalYearStart: monthPtr(13)})
		require.ErrorIs(t, err, tenant.ErrValidation)
	})

	t.Run("deactivation", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		id := f.provision(t, uuid.New(), "Acme")

		updated, err := f.svc.UpdateProfile(ctx, id, tenant.UpdateProfileParams{Active: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, updated.Active)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		_, err := f.svc.UpdateProfile(ctx, uuid.New(), tenant.UpdateProfileParams{})
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}

func TestServiceUpdateSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newServiceFixture(t)
	id := f.provision(t, uuid.New(), "Acme")

	set, err := f.svc.UpdateSettings(ctx, id, tenant.UpdateSettingsParams{
		Timezone:   strPtr("Asia/Dubai"),
		DateFormat: strPtr("DD/MM/YYYY"),
		Language:   strPtr("ar"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Dubai", set.Timezone)
	assert.Equal(t, "DD/MM/YYYY", set.DateFormat)
	assert.Equal(t, "ar", set.Language)

	_, err = f.svc.UpdateSettings(ctx, id, tenant.UpdateSettingsParams{Timezone: strPtr("Mars/Olympus")})
	require.ErrorIs(t, err, tenant.ErrValidation)

	_, err = f.svc.UpdateSettings(ctx, id, tenant.UpdateSettingsParams{Language: strPtr("zz-not-a-tag!")})
	require.ErrorIs(t, err, tenant.ErrValidation)
}

func TestServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cascades to all dependent records", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		owner := uuid.New()
		id := f.provision(t, owner, "Acme")

		require.NoError(t, f.svc.Delete(ctx, id))

		_, err := f.tenants.Get(ctx, id)
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)

		_, err = f.settings.Get(ctx, id)
		require.ErrorIs(t, err, tenant.ErrSettingsNotFound)

		roles, err := f.roles.ListByTenant(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, roles)

		members, err := f.memberships.ListByTenant(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, members)

		installs, err := f.installs.List(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, installs)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		err := f.svc.Delete(ctx, uuid.New())
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}
