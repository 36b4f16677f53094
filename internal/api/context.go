package api

import "context"

type contextKey string

const routeKey contextKey = "api_route"

// WithRoute attaches the route template of a call to the context so the
// request log groups calls by endpoint rather than by id.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

// RouteFrom extracts the route template from the context.
func RouteFrom(ctx context.Context) string {
	if v, ok := ctx.Value(routeKey).(string); ok {
		return v
	}
	return "unknown"
}
