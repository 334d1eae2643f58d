package company

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mahmudadem/erpcore/svc/authz"
	"github.com/mahmudadem/erpcore/svc/module"
	"github.com/mahmudadem/erpcore/svc/registry"
	"github.com/mahmudadem/erpcore/svc/tenant"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses with a stable error code.
func writeError(w http.ResponseWriter, err error) {
	var (
		status = http.StatusInternalServerError
		code   = "internal_error"
	)
	switch {
	case errors.Is(err, tenant.ErrValidation),
		errors.Is(err, authz.ErrValidation),
		errors.Is(err, errBadRequest):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, registry.ErrUnknownBundle),
		errors.Is(err, registry.ErrUnknownModule):
		status, code = http.StatusUnprocessableEntity, "unknown_catalog_entry"
	case errors.Is(err, tenant.ErrTenantExists),
		errors.Is(err, authz.ErrRoleExists),
		errors.Is(err, authz.ErrMembershipExists):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, tenant.ErrSettingsNotFound),
		errors.Is(err, authz.ErrRoleNotFound),
		errors.Is(err, authz.ErrMembershipNotFound),
		errors.Is(err, module.ErrInstallationNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, authz.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, tenant.ErrRollbackFailed):
		// Creation failed and compensation hung; the message stays generic,
		// the details live in the logs.
		status, code = http.StatusInternalServerError, "provisioning_failed"
	case errors.Is(err, tenant.ErrCreationFailed):
		status, code = http.StatusInternalServerError, "provisioning_failed"
	}

	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

var errBadRequest = errors.New("company: malformed request body")

// decodeJSON strictly decodes the request body into v. Unknown fields and
// trailing data are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return errBadRequest
	}
	return nil
}
