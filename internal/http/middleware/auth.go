package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/prepstack-backend/internal/http/response"
	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	resolver services.IdentityResolver
}

func NewAuthMiddleware(log *logger.Logger, resolver services.IdentityResolver) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, resolver: resolver}
}

// RequireIdentity answers 401 before any handler runs when the caller cannot
// be resolved, and otherwise stores the identity on the request context.
func (am *AuthMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := am.resolver.Resolve(c.Request)
		if err != nil {
			am.log.Debug("identity rejected", "path", c.FullPath(), "reason", err.Error())
			response.AbortAPIError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithIdentity(c.Request.Context(), id))
		c.Set("user_id", id.UserID.String())
		c.Next()
	}
}
