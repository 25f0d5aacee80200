package core

import "context"

// Source records how a file reached the service.
type Source string

const (
	SourceUpload Source = "upload"
	SourceWatch  Source = "watch"
	SourceCLI    Source = "cli"
)

type contextKey string

const (
	ctxKeySource   contextKey = "analysis_source"
	ctxKeyClientIP contextKey = "analysis_ip"
)

// ContextWithSource tags analyses started with ctx.
func ContextWithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, ctxKeySource, src)
}

// SourceFromContext returns the tagged source, defaulting to SourceUpload.
func SourceFromContext(ctx context.Context) Source {
	if v, ok := ctx.Value(ctxKeySource).(Source); ok && v != "" {
		return v
	}
	return SourceUpload
}

// ContextWithClientIP adds the client address to context for logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext extracts the client address from context.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}
