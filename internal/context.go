package internal

import (
	"context"

	"github.com/frahmantamala/hospital-admin/internal/core/role"
)

type ctxKey string

const ContextActorKey ctxKey = "actor"

// Actor is the authenticated caller of an admin operation.
type Actor struct {
	ID    int64     `json:"id"`
	Email string    `json:"email"`
	Role  role.Role `json:"role"`
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(ContextActorKey).(*Actor)
	return actor, ok && actor != nil
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}
