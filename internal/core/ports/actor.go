package ports

import "context"

type actorKey struct{}

// WithActor records the id of the authenticated caller on ctx so services can
// attribute audit events without taking claims on every signature.
func WithActor(ctx context.Context, actorID string) context.Context {
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFrom returns the caller id stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}
