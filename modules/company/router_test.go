package company_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmudadem/erpcore/modules/company"
	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/module"
	"github.com/mahmudadem/erpcore/svc/registry"
	"github.com/mahmudadem/erpcore/svc/tenant"
)

// testServer wires the full stack on in-memory stores. Authentication is
// faked by reading the actor id from the X-User-ID header.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	catalog := registry.Default()
	roles := authz.NewInMemRoleStore()
	memberships := authz.NewInMemMembershipStore()
	tenants := tenant.NewInMemStore()
	settings := tenant.NewInMemSettingsStore()
	installs := module.NewInMemStore()
	resolver := authz.NewResolver(roles, catalog)

	router := company.Router(company.Deps{
		Provisioner: tenant.NewProvisioner(tenant.ProvisionerDeps{
			Tenants:     tenants,
			Settings:    settings,
			Roles:       roles,
			Memberships: memberships,
			Resolver:    resolver,
			Installs:    installs,
			Catalog:     catalog,
		}),
		Tenants:  tenant.NewService(tenants, settings, roles, memberships, installs, nil),
		Provider: tenant.NewProvider(tenants, nil, tenant.HeaderResolver(""), nil),
		Modules:  module.NewService(installs, catalog, nil),
		Authz:    authz.NewService(roles, memberships, resolver, nil),
		Checker:  authz.NewChecker(memberships, roles, resolver, nil),
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if actor, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(authz.WithActor(r.Context(), actor))
			}
		}
		router.ServeHTTP(w, r)
	})
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c *client) do(method, path string, actor uuid.UUID, tenantID, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, rd)
	if actor != uuid.Nil {
		r.Header.Set("X-User-ID", actor.String())
	}
	if tenantID != "" {
		r.Header.Set("X-Tenant-ID", tenantID)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)
	return w
}

func (c *client) createCompany(actor uuid.UUID, name string) string {
	c.t.Helper()

	w := c.do("POST", "/companies", actor, "",
		fmt.Sprintf(`{"name":%q,"bundle_id":"starter"}`, name))
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestCompanyLifecycle(t *testing.T) {
	t.Parallel()

	c := &client{t: t, handler: newTestServer(t)}
	owner := uuid.New()
	companyID := c.createCompany(owner, "Acme Corp")

	t.Run("anonymous creation is rejected", func(t *testing.T) {
		w := c.do("POST", "/companies", uuid.Nil, "", `{"name":"X","bundle_id":"starter"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w := c.do("POST", "/companies", owner, "", `{"name":"acme corp","bundle_id":"starter"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown bundle", func(t *testing.T) {
		w := c.do("POST", "/companies", owner, "", `{"name":"Other","bundle_id":"galactic"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("owner reads profile", func(t *testing.T) {
		w := c.do("GET", "/company/", owner, companyID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Name    string   `json:"name"`
			Modules []string `json:"modules"`
			Active  bool     `json:"active"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Acme Corp", resp.Name)
		assert.Contains(t, resp.Modules, registry.AdminModule)
		assert.True(t, resp.Active)
	})

	t.Run("owner updates profile", func(t *testing.T) {
		w := c.do("PATCH", "/company/", owner, companyID, `{"base_currency":"eur"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"EUR"`)
	})

	t.Run("settings round trip", func(t *testing.T) {
		w := c.do("GET", "/company/settings/", owner, companyID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenant.DefaultTimezone)

		w = c.do("PATCH", "/company/settings/", owner, companyID, `{"timezone":"Europe/Berlin"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Europe/Berlin")
	})

	t.Run("missing tenant header", func(t *testing.T) {
		w := c.do("GET", "/company/", owner, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		w := c.do("GET", "/company/", owner, uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCompanyModules(t *testing.T) {
	t.Parallel()

	c := &client{t: t, handler: newTestServer(t)}
	owner := uuid.New()
	companyID := c.createCompany(owner, "Acme")

	t.Run("activation installs dependencies", func(t *testing.T) {
		w := c.do("POST", "/company/modules/", owner, companyID, `{"code":"sales"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = c.do("GET", "/company/modules/?include_implicit=true", owner, companyID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var installs []struct {
			Code     string `json:"code"`
			Implicit bool   `json:"implicit"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &installs))
		byCode := map[string]bool{}
		for _, inst := range installs {
			byCode[inst.Code] = inst.Implicit
		}
		assert.Contains(t, byCode, "sales")
		assert.False(t, byCode["sales"])
		// inventory came with the starter bundle, explicitly.
		assert.False(t, byCode["inventory"])
	})

	t.Run("unknown module", func(t *testing.T) {
		w := c.do("POST", "/company/modules/", owner, companyID, `{"code":"warpdrive"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestCompanyRolesAndMembers(t *testing.T) {
	t.Parallel()

	c := &client{t: t, handler: newTestServer(t)}
	owner := uuid.New()
	member := uuid.New()
	companyID := c.createCompany(owner, "Acme")

	var clerkRoleID string

	t.Run("owner creates a custom role", func(t *testing.T) {
		w := c.do("POST", "/company/roles/", owner, companyID,
			`{"name":"Clerk","permissions":["accounting.vouchers.create"]}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			ID       string   `json:"id"`
			Resolved []string `json:"resolved"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Resolved, "accounting.vouchers.create")
		clerkRoleID = resp.ID
	})

	t.Run("owner adds a member", func(t *testing.T) {
		w := c.do("POST", "/company/members/", owner, companyID,
			fmt.Sprintf(`{"user_id":%q,"role_id":%q}`, member.String(), clerkRoleID))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("member without admin grants is forbidden", func(t *testing.T) {
		w := c.do("POST", "/company/roles/", member, companyID, `{"name":"Sneaky"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = c.do("DELETE", "/company/", member, companyID, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("system role delete is forbidden", func(t *testing.T) {
		w := c.do("DELETE", "/company/roles/"+authz.RoleOwner, owner, companyID, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("role in use cannot be deleted", func(t *testing.T) {
		w := c.do("DELETE", "/company/roles/"+clerkRoleID, owner, companyID, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner membership is protected", func(t *testing.T) {
		w := c.do("PUT", "/company/members/"+owner.String()+"/disabled", owner, companyID,
			`{"disabled":true}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = c.do("DELETE", "/company/members/"+owner.String(), owner, companyID, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("disable then remove member", func(t *testing.T) {
		w := c.do("PUT", "/company/members/"+member.String()+"/disabled", owner, companyID,
			`{"disabled":true}`)
		require.Equal(t, http.StatusNoContent, w.Code)

		// The disabled member fails even read-only checks now.
		w = c.do("GET", "/company/", member, companyID, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = c.do("DELETE", "/company/members/"+member.String(), owner, companyID, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = c.do("DELETE", "/company/roles/"+clerkRoleID, owner, companyID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("owner deletes the company", func(t *testing.T) {
		w := c.do("DELETE", "/company/", owner, companyID, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = c.do("GET", "/company/", owner, companyID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
