package authz

import (
	"context"

	"github.com/google/uuid"
)

// actorKey prevents collisions with other packages using context values.
type actorKey struct{}

// WithActor stores the acting user's id in the context. Authentication
// middleware is expected to call this once per request.
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the acting user's id, if present.
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	return id, ok
}
