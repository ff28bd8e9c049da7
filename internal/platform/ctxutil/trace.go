package ctxutil

import (
	"context"
	"time"
)

type traceDataKey struct{}

// TraceData identifies one API request across logs, response headers and spans.
type TraceData struct {
	TraceID   string
	RequestID string
	// Sampled is true when an exporting otel span wraps the request.
	Sampled   bool
	StartedAt time.Time
}

// Elapsed is the time since the request entered the middleware chain, or 0
// when StartedAt was never set.
func (td *TraceData) Elapsed() time.Duration {
	if td == nil || td.StartedAt.IsZero() {
		return 0
	}
	return time.Since(td.StartedAt)
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}
