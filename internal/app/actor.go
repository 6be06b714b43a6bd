package app

import (
	"context"
	"strings"
)

// DefaultActor attributes changes that carry no caller identity.
const DefaultActor = "taskboard-user"

// actorContextKey stores context keys for actor attribution.
type actorContextKey struct{}

// WithActor attaches a display name used to attribute activity rows.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, strings.TrimSpace(actor))
}

// ActorFromContext returns the attached actor when present and non-blank.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}

// actorFor resolves attribution: context first, then the configured default.
func (s *Service) actorFor(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor
	}
	return s.defaultActor
}
