package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext gives every request a request id and a trace id. The
// trace id comes from the active otel span when otelgin runs first, then from
// the inbound header, then a fresh uuid.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: strings.TrimSpace(c.GetHeader(headerRequestID)),
			StartedAt: time.Now(),
		}
		if td.RequestID == "" {
			td.RequestID = uuid.New().String()
		}
		if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.HasTraceID() {
			td.TraceID = spanCtx.TraceID().String()
			td.Sampled = spanCtx.IsSampled()
		}
		if td.TraceID == "" {
			td.TraceID = strings.TrimSpace(c.GetHeader(headerTraceID))
		}
		if td.TraceID == "" {
			td.TraceID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(headerTraceID, td.TraceID)
		c.Writer.Header().Set(headerRequestID, td.RequestID)
		c.Next()
	}
}
