package api

import (
	"context"
	"time"

	"github.com/openshelf/openshelf/domain/identity"
)

type ctxKey string

const (
	identityKey ctxKey = "identity"
	payloadKey  ctxKey = "payload"
	paramsKey   ctxKey = "params"
)

// withIdentity adds the authenticated principal to the context.
func withIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// getIdentity retrieves the authenticated principal from context.
func getIdentity(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(identity.Identity)
	return id, ok
}

// withPayload adds the validated request body to the context.
func withPayload(ctx context.Context, p map[string]any) context.Context {
	return context.WithValue(ctx, payloadKey, p)
}

// payload retrieves the validated request body from context.
func payload(ctx context.Context) map[string]any {
	p, ok := ctx.Value(payloadKey).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return p
}

// withParams adds validated URL/query parameters to the context.
func withParams(ctx context.Context, p map[string]any) context.Context {
	return context.WithValue(ctx, paramsKey, p)
}

// params retrieves validated URL/query parameters from context.
func params(ctx context.Context) map[string]any {
	p, ok := ctx.Value(paramsKey).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return p
}

// Typed accessors over validated payloads. The walker has already
// canonicalized values, so these only narrow the dynamic type.

func str(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func integer(p map[string]any, key string) int64 {
	n, _ := p[key].(int64)
	return n
}

func number(p map[string]any, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func boolean(p map[string]any, key string) bool {
	b, _ := p[key].(bool)
	return b
}

func datetime(p map[string]any, key string) time.Time {
	t, _ := p[key].(time.Time)
	return t
}

func stringSlice(p map[string]any, key string) []string {
	items, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
