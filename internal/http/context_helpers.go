package httpx

import (
	"context"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// actorKey is an unexported context key type to avoid collisions across packages.
type actorKey struct{}

// SetActorInContext returns a child context that carries the given actor.
// If actor is nil, the original ctx is returned unchanged.
func SetActorInContext(ctx context.Context, actor *model.Actor) context.Context {
	if actor == nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor and whether one is present.
func ActorFromContext(ctx context.Context) (*model.Actor, bool) {
	if actor, ok := ctx.Value(actorKey{}).(*model.Actor); ok && actor != nil {
		return actor, true
	}
	return nil, false
}

type requestIDKey struct{}

// RequestIDFromContext returns the request id assigned by the RequestID middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
