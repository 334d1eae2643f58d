package company

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/module"
	"github.com/mahmudadem/erpcore/svc/tenant"
)

type handlers struct {
	deps Deps
}

type createCompanyRequest struct {
	Name            string `json:"name"`
	BundleID        string `json:"bundle_id"`
	Subdomain       string `json:"subdomain,omitempty"`
	BaseCurrency    string `json:"base_currency,omitempty"`
	FiscalYearStart int    `json:"fiscal_year_start,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
	DateFormat      string `json:"date_format,omitempty"`
	Language        string `json:"language,omitempty"`
}

func (h *handlers) createCompany(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
			Code: "unauthorized", Message: "authentication required",
		}})
		return
	}

	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.deps.Provisioner.CreateTenant(r.Context(), tenant.CreateTenantParams{
		CreatorID:       actor,
		Name:            req.Name,
		BundleID:        req.BundleID,
		Subdomain:       req.Subdomain,
		BaseCurrency:    req.BaseCurrency,
		FiscalYearStart: time.Month(req.FiscalYearStart),
		Timezone:        req.Timezone,
		DateFormat:      req.DateFormat,
		Language:        req.Language,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, companyResponse{ID: id.String(), Name: req.Name})
}

type companyResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Subdomain       string   `json:"subdomain,omitempty"`
	BaseCurrency    string   `json:"base_currency,omitempty"`
	FiscalYearStart int      `json:"fiscal_year_start,omitempty"`
	Modules         []string `json:"modules,omitempty"`
	Active          bool     `json:"active"`
}

func toCompanyResponse(t tenant.Tenant) companyResponse {
	return companyResponse{
		ID:              t.ID.String(),
		Name:            t.Name,
		Subdomain:       t.Subdomain,
		BaseCurrency:    t.BaseCurrency,
		FiscalYearStart: int(t.FiscalYearStart),
		Modules:         t.Modules,
		Active:          t.Active,
	}
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCompanyResponse(tenant.MustFromContext(r.Context())))
}

type updateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	Subdomain       *string `json:"subdomain,omitempty"`
	BaseCurrency    *string `json:"base_currency,omitempty"`
	FiscalYearStart *int    `json:"fiscal_year_start,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	params := tenant.UpdateProfileParams{
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		BaseCurrency: req.BaseCurrency,
		Active:       req.Active,
	}
	if req.FiscalYearStart != nil {
		m := time.Month(*req.FiscalYearStart)
		params.FiscalYearStart = &m
	}

	updated, err := h.deps.Tenants.UpdateProfile(r.Context(), t.ID, params)
	if err != nil {
		writeError(w, err)
		return
	}
	h.deps.Provider.Evict(r.Context(), t)

	writeJSON(w, http.StatusOK, toCompanyResponse(updated))
}

func (h *handlers) deleteCompany(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	if err := h.deps.Tenants.Delete(r.Context(), t.ID); err != nil {
		writeError(w, err)
		return
	}
	h.deps.Provider.Evict(r.Context(), t)
	writeJSON(w, http.StatusNoContent, nil)
}

type settingsResponse struct {
	Timezone   string `json:"timezone"`
	DateFormat string `json:"date_format"`
	Language   string `json:"language"`
}

func (h *handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	set, err := h.deps.Tenants.GetSettings(r.Context(), t.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		Timezone:   set.Timezone,
		DateFormat: set.DateFormat,
		Language:   set.Language,
	})
}

type updateSettingsRequest struct {
	Timezone   *string `json:"timezone,omitempty"`
	DateFormat *string `json:"date_format,omitempty"`
	Language   *string `json:"language,omitempty"`
}

func (h *handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	set, err := h.deps.Tenants.UpdateSettings(r.Context(), t.ID, tenant.UpdateSettingsParams{
		Timezone:   req.Timezone,
		DateFormat: req.DateFormat,
		Language:   req.Language,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		Timezone:   set.Timezone,
		DateFormat: set.DateFormat,
		Language:   set.Language,
	})
}

type installationResponse struct {
	Code        string `json:"code"`
	Implicit    bool   `json:"implicit"`
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
}

func (h *handlers) listModules(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	includeImplicit := r.URL.Query().Get("include_implicit") == "true"

	installs, err := h.deps.Modules.ListActive(r.Context(), t.ID, includeImplicit)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]installationResponse, 0, len(installs))
	for _, inst := range installs {
		out = append(out, installationResponse{
			Code:        inst.Code,
			Implicit:    inst.Implicit,
			Status:      string(inst.Status),
			Initialized: inst.Initialized,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type activateModuleRequest struct {
	Code string `json:"code"`
}

func (h *handlers) activateModule(w http.ResponseWriter, r *http.Request) {
	var req activateModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	if err := h.deps.Modules.Activate(r.Context(), t.ID, req.Code); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, installationResponse{
		Code:        req.Code,
		Status:      string(module.StatusComplete),
		Initialized: true,
	})
}

type roleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Modules     []string `json:"modules,omitempty"`
	Resolved    []string `json:"resolved,omitempty"`
	System      bool     `json:"system"`
}

func toRoleResponse(role authz.Role) roleResponse {
	return roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: role.Permissions,
		Modules:     role.Modules,
		Resolved:    role.Resolved,
		System:      role.System,
	}
}

func (h *handlers) listRoles(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	roles, err := h.deps.Authz.ListRoles(r.Context(), t.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toRoleResponse(role))
	}
	writeJSON(w, http.StatusOK, out)
}

type createRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Modules     []string `json:"modules,omitempty"`
}

func (h *handlers) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	role, err := h.deps.Authz.CreateRole(r.Context(), t.ID, authz.CreateRoleParams{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		Modules:     req.Modules,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoleResponse(role))
}

type updateRoleGrantsRequest struct {
	Permissions []string `json:"permissions,omitempty"`
	Modules     []string `json:"modules,omitempty"`
}

func (h *handlers) updateRoleGrants(w http.ResponseWriter, r *http.Request) {
	var req updateRoleGrantsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	role, err := h.deps.Authz.UpdateRoleGrants(r.Context(), t.ID,
		chi.URLParam(r, "roleID"), req.Permissions, req.Modules)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *handlers) deleteRole(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	if err := h.deps.Authz.DeleteRole(r.Context(), t.ID, chi.URLParam(r, "roleID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type memberResponse struct {
	UserID   string `json:"user_id"`
	RoleID   string `json:"role_id"`
	IsOwner  bool   `json:"is_owner"`
	Disabled bool   `json:"disabled"`
}

func toMemberResponse(m authz.Membership) memberResponse {
	return memberResponse{
		UserID:   m.UserID.String(),
		RoleID:   m.RoleID,
		IsOwner:  m.IsOwner,
		Disabled: m.Disabled,
	}
}

func (h *handlers) listMembers(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	members, err := h.deps.Authz.ListMembers(r.Context(), t.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

func (h *handlers) addMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, errBadRequest)
		return
	}

	t := tenant.MustFromContext(r.Context())
	m, err := h.deps.Authz.AddMember(r.Context(), t.ID, userID, req.RoleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(m))
}

func memberID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		return uuid.Nil, errBadRequest
	}
	return id, nil
}

type changeMemberRoleRequest struct {
	RoleID string `json:"role_id"`
}

func (h *handlers) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, err := memberID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req changeMemberRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	if err := h.deps.Authz.ChangeMemberRole(r.Context(), t.ID, userID, req.RoleID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type setMemberDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

func (h *handlers) setMemberDisabled(w http.ResponseWriter, r *http.Request) {
	userID, err := memberID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req setMemberDisabledRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	if err := h.deps.Authz.SetMemberDisabled(r.Context(), t.ID, userID, req.Disabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *handlers) removeMember(w http.ResponseWriter, r *http.Request) {
	userID, err := memberID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	t := tenant.MustFromContext(r.Context())
	if err := h.deps.Authz.RemoveMember(r.Context(), t.ID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
