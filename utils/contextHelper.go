package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/inventory_backend/appctx"
)

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyActor         = appctx.ContextKeyActor
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

var ErrNoActor = errors.New("user is required")

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetActorFromContext(ctx context.Context) (appctx.Actor, bool) {
	return appctx.GetActor(ctx)
}

// RequireActor returns the acting user or ErrNoActor.
func RequireActor(ctx context.Context) (appctx.Actor, error) {
	actor, ok := appctx.GetActor(ctx)
	if !ok || actor.UserId <= 0 {
		return appctx.Actor{}, ErrNoActor
	}
	return actor, nil
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	actor, ok := appctx.GetActor(ctx)
	if !ok {
		return 0, false
	}
	return actor.UserId, true
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetActorInContext(ctx context.Context, actor appctx.Actor) context.Context {
	return appctx.Set(ctx, ContextKeyActor, actor)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
