// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting user.
type ActorKey struct{}

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

// WithActor returns a context with the actor embedded.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey{}, actor)
}

// ActorFromContext returns the actor from context and whether one was set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ActorKey{}).(Actor)
	return a, ok
}

// ActorRole returns the role of the actor in ctx, or empty string if anonymous.
func ActorRole(ctx context.Context) string {
	a, _ := ActorFromContext(ctx)
	return a.Role
}

// ActorID returns the user ID of the actor in ctx, or empty string if anonymous.
func ActorID(ctx context.Context) string {
	a, _ := ActorFromContext(ctx)
	return a.UserID
}
