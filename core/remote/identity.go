package remote

import (
	"context"
	"fmt"
)

// Identity supplies the actor id stamped onto creation payloads.
type Identity interface {
	ActorID(ctx context.Context) (string, error)
}

type actorKey struct{}

// WithActor returns a context carrying an actor id for ContextIdentity.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// StaticIdentity always reports the same actor. An empty value means no session.
type StaticIdentity string

// ActorID implements Identity.
func (s StaticIdentity) ActorID(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: no actor configured", ErrUnauthenticated)
	}
	return string(s), nil
}

// ContextIdentity reads the actor from the context and falls back to Fallback.
type ContextIdentity struct {
	Fallback Identity
}

// ActorID implements Identity.
func (c ContextIdentity) ActorID(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return id, nil
	}
	if c.Fallback != nil {
		return c.Fallback.ActorID(ctx)
	}
	return "", fmt.Errorf("%w: no actor in session", ErrUnauthenticated)
}
