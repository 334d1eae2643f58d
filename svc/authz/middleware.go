package authz

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// TenantIDResolver extracts the tenant id the request operates on.
// The modules/company composition wires this to the tenant middleware's
// context helper; tests can supply a fixed id.
type TenantIDResolver func(r *http.Request) (uuid.UUID, error)

// RequirePermission is the route-level guard: tenant owners and global
// admins pass outright, everyone else needs the named permission. It expects
// the actor to be present in the request context (see WithActor).
//
// Denials render 403, a missing actor 401, a missing tenant 404.
func RequirePermission(checker *Checker, tenantID TenantIDResolver, required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			tid, err := tenantID(r)
			if err != nil {
				http.Error(w, "tenant not found", http.StatusNotFound)
				return
			}

			switch err := checker.Authorize(r.Context(), actor, tid, required); {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		})
	}
}
