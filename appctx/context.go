package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyToken         = ContextKey("Token")
	ContextKeyActor         = ContextKey("Actor")
	ContextKeyCorrelationId = ContextKey("CorrelationId")
)

// Actor is the user on whose behalf a request runs.
// It is always passed explicitly through the context, never kept in package state.
type Actor struct {
	UserId int    `json:"user_id"`
	Login  string `json:"login"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func GetInt(ctx context.Context, key ContextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func GetActor(ctx context.Context) (Actor, bool) {
	v, ok := ctx.Value(ContextKeyActor).(Actor)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
