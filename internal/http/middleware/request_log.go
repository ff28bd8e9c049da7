package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			// The trace middleware starts its clock earlier in the chain.
			if d := td.Elapsed(); d > elapsed {
				elapsed = d
			}
			if td.Sampled {
				fields = append(fields, "sampled", true)
			}
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
			if td.RequestID != "" {
				fields = append(fields, "request_id", td.RequestID)
			}
		}
		if id := ctxutil.GetIdentity(c.Request.Context()); id != nil && id.UserID != uuid.Nil {
			fields = append(fields, "user_id", id.UserID.String(), "auth_source", id.Source)
		}
		fields = append(fields, "duration_ms", elapsed.Milliseconds())
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
