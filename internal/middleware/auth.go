package middleware

import (
	"civilprep_backend/internal/util"
	"civilprep_backend/pkg/logger"
	"civilprep_backend/pkg/tracing"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验访问令牌，通过后把 *util.Claims 放入上下文
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := util.ParseJWT(raw, secret)
		if err != nil {
			logger.Log.Debug("Access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(util.RequestIDKey)),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		c.Set(util.ContextUserKey, claims)
		tracing.UserID(c.Request.Context(), claims.UserID)
		c.Next()
	}
}

// tokenFromRequest 优先读 Authorization: Bearer，其次 ?token=（EventSource 无法设置请求头）
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(c.Query("token"))
}

func abortUnauthorized(c *gin.Context) {
	util.Unauthorized(c)
	c.Abort()
}
