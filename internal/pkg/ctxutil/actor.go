package ctxutil

import (
	"context"

	"github.com/yungbote/baseapi-backend/internal/domain/audit"
)

type actorKey struct{}

// WithActor attaches the caller identity that commits on ctx are attributed to.
func WithActor(ctx context.Context, actor audit.Actor) context.Context {
	return context.WithValue(Default(ctx), actorKey{}, actor)
}

// ActorFrom returns the actor attached by WithActor, or the zero Actor.
func ActorFrom(ctx context.Context) (audit.Actor, bool) {
	if ctx == nil {
		return audit.Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(audit.Actor)
	return actor, ok
}
