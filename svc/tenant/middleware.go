package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mahmudadem/erpcore/pkg/logger"
)

// Provider turns request identifiers into tenant records, consulting the
// cache before the store. Identifiers that parse as UUIDs are looked up by
// id, everything else by subdomain.
type Provider struct {
	store   Store
	cache   Cache
	resolve IdentifierResolver
	log     *slog.Logger
}

// NewProvider builds a Provider. A nil cache disables caching.
func NewProvider(store Store, cache Cache, resolve IdentifierResolver, log *slog.Logger) *Provider {
	if cache == nil {
		cache = NoOpCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{store: store, cache: cache, resolve: resolve, log: log}
}

// Resolve extracts the tenant identifier from the request and loads the
// tenant. Requests without an identifier get ErrNoTenantInContext.
func (p *Provider) Resolve(ctx context.Context, r *http.Request) (Tenant, error) {
	id, err := p.resolve(r)
	if err != nil {
		return Tenant{}, err
	}
	if id == "" {
		return Tenant{}, ErrNoTenantInContext
	}
	return p.Lookup(ctx, id)
}

// Lookup loads a tenant by identifier, cache first.
func (p *Provider) Lookup(ctx context.Context, identifier string) (Tenant, error) {
	if t, ok := p.cache.Get(ctx, identifier); ok {
		return t, nil
	}

	var (
		t   Tenant
		err error
	)
	if uid, perr := uuid.Parse(identifier); perr == nil {
		t, err = p.store.Get(ctx, uid)
	} else {
		t, err = p.store.GetBySubdomain(ctx, identifier)
	}
	if err != nil {
		return Tenant{}, err
	}

	if err := p.cache.Set(ctx, identifier, t); err != nil {
		p.log.WarnContext(ctx, "failed to cache tenant", logger.TenantID(t.ID), logger.Error(err))
	}
	return t, nil
}

// Evict drops a tenant from the cache after an update. Both lookup keys
// are evicted.
func (p *Provider) Evict(ctx context.Context, t Tenant) {
	for _, key := range []string{t.ID.String(), t.Subdomain} {
		if key == "" {
			continue
		}
		if err := p.cache.Delete(ctx, key); err != nil {
			p.log.WarnContext(ctx, "failed to evict tenant from cache", logger.TenantID(t.ID), logger.Error(err))
		}
	}
}

// Middleware resolves the request's tenant and stores it in the context.
// Requests without an identifier pass through untouched when required is
// false, and get 400 when it is true. Deactivated tenants are rejected
// with 403 regardless.
func (p *Provider) Middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := p.Resolve(r.Context(), r)
			switch {
			case errors.Is(err, ErrNoTenantInContext):
				if required {
					http.Error(w, "tenant identifier required", http.StatusBadRequest)
					return
				}
				next.ServeHTTP(w, r)
				return
			case errors.Is(err, ErrInvalidIdentifier):
				http.Error(w, "invalid tenant identifier", http.StatusBadRequest)
				return
			case errors.Is(err, ErrTenantNotFound):
				http.Error(w, "tenant not found", http.StatusNotFound)
				return
			case err != nil:
				p.log.ErrorContext(r.Context(), "tenant resolution failed", logger.Error(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !t.Active {
				http.Error(w, "tenant is deactivated", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireFromContext adapts context-based tenant resolution to the
// authorization middleware's resolver signature.
func RequireFromContext(r *http.Request) (uuid.UUID, error) {
	id, ok := IDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrNoTenantInContext
	}
	return id, nil
}
