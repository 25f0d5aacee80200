package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/bmsview/internal/core"
)

// WithRequestMetadata tags ctx as an upload from the requesting client.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithSource(ctx, core.SourceUpload)
	return core.ContextWithClientIP(ctx, clientIP(r))
}
