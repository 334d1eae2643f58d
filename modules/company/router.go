package company

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/module"
	"github.com/mahmudadem/erpcore/svc/tenant"
)

// Permissions guarding the company administration routes. Owners and global
// admins bypass them in the checker.
const (
	permProfileView   = "companyAdmin.profile.view"
	permProfileUpdate = "companyAdmin.profile.update"
	permRolesManage   = "companyAdmin.roles.manage"
	permMembersManage = "companyAdmin.members.manage"
	permModulesManage = "companyAdmin.modules.manage"

	// permOwnerOnly is satisfiable only by a full wildcard grant, which in
	// practice means the owner role.
	permOwnerOnly = "*"
)

// Deps bundles the services the company module composes.
type Deps struct {
	Provisioner *tenant.Provisioner
	Tenants     *tenant.Service
	Provider    *tenant.Provider
	Modules     *module.Service
	Authz       *authz.Service
	Checker     *authz.Checker
}

// Router assembles the company administration surface.
//
// POST /companies creates a company for the authenticated actor. Everything
// under /company operates on the tenant resolved from the request (header,
// path or subdomain, per the Provider's resolver) and is permission-guarded.
func Router(deps Deps) chi.Router {
	h := &handlers{deps: deps}

	guard := func(required string) func(http.Handler) http.Handler {
		return authz.RequirePermission(deps.Checker, tenant.RequireFromContext, required)
	}

	r := chi.NewRouter()

	r.Post("/companies", h.createCompany)

	r.Route("/company", func(r chi.Router) {
		r.Use(deps.Provider.Middleware(true))

		r.With(guard(permProfileView)).Get("/", h.getProfile)
		r.With(guard(permProfileUpdate)).Patch("/", h.updateProfile)
		r.With(guard(permOwnerOnly)).Delete("/", h.deleteCompany)

		r.Route("/settings", func(r chi.Router) {
			r.With(guard(permProfileView)).Get("/", h.getSettings)
			r.With(guard(permProfileUpdate)).Patch("/", h.updateSettings)
		})

		r.Route("/modules", func(r chi.Router) {
			r.With(guard(permProfileView)).Get("/", h.listModules)
			r.With(guard(permModulesManage)).Post("/", h.activateModule)
		})

		r.Route("/roles", func(r chi.Router) {
			r.With(guard(permProfileView)).Get("/", h.listRoles)
			r.With(guard(permRolesManage)).Post("/", h.createRole)
			r.With(guard(permRolesManage)).Put("/{roleID}/grants", h.updateRoleGrants)
			r.With(guard(permRolesManage)).Delete("/{roleID}", h.deleteRole)
		})

		r.Route("/members", func(r chi.Router) {
			r.With(guard(permMembersManage)).Get("/", h.listMembers)
			r.With(guard(permMembersManage)).Post("/", h.addMember)
			r.With(guard(permMembersManage)).Put("/{userID}/role", h.changeMemberRole)
			r.With(guard(permMembersManage)).Put("/{userID}/disabled", h.setMemberDisabled)
			r.With(guard(permMembersManage)).Delete("/{userID}", h.removeMember)
		})
	})

	return r
}
