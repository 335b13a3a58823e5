package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/internal/service"
)

// Logger access log. Besides the HTTP basics each line carries who made the
// request: the token's user and email, the resolved role on role-guarded
// routes, and the hashed credential on throttled auth routes.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		fields = append(fields, actorFields(c)...)
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("client error", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

func actorFields(c *gin.Context) []zap.Field {
	var fields []zap.Field
	if uid := c.GetString(CtxUserID); uid != "" {
		fields = append(fields, zap.String("user_id", uid))
	}
	if email := c.GetString(CtxEmail); email != "" {
		fields = append(fields, zap.String("email", email))
	}
	if p, ok := c.Get(CtxPrincipal); ok {
		if principal, ok := p.(*service.Principal); ok {
			fields = append(fields, zap.String("role", principal.Role))
		}
	}
	if cred := c.GetString(CtxCredential); cred != "" {
		fields = append(fields, zap.String("credential", cred))
	}
	return fields
}
