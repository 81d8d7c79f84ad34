package ctxutil

import (
	"context"
	"testing"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := ActorFromContext(ctx); ok {
		t.Fatal("expected no actor in empty context")
	}
	if ActorRole(ctx) != "" || ActorID(ctx) != "" {
		t.Error("expected empty role and id for anonymous context")
	}

	ctx = WithActor(ctx, Actor{UserID: "USER-001", Username: "admin", Role: "auditor"})
	a, ok := ActorFromContext(ctx)
	if !ok || a.Username != "admin" {
		t.Fatalf("unexpected actor: %+v (ok=%v)", a, ok)
	}
	if ActorRole(ctx) != "auditor" || ActorID(ctx) != "USER-001" {
		t.Errorf("ActorRole/ActorID = %q/%q", ActorRole(ctx), ActorID(ctx))
	}
}
