package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ShopCodeKey is the request context key for the active shop code.
type ShopCodeKey struct{}

// ActorKey is the request context key for the authenticated principal.
type ActorKey struct{}

// Actor identifies the authenticated principal for the current request.
type Actor struct {
	MemberID snowflake.ID
	Role     string
}

// WithShopCode stores the shop code in the context.
func WithShopCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, ShopCodeKey{}, strings.TrimSpace(code))
}

// ShopCodeFromContext returns the shop code from context, if set.
func ShopCodeFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	code, ok := ctx.Value(ShopCodeKey{}).(string)
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// WithActor stores the authenticated principal in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey{}, actor)
}

// ActorFromContext returns the authenticated principal, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ActorKey{}).(Actor)
	if !ok || actor.MemberID == 0 {
		return Actor{}, false
	}
	return actor, true
}
