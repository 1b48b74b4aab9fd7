package web

import (
	"context"
	"net/http"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/history"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for the
// import history record.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = history.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	ctx = history.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
