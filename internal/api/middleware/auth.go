package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/internal/service"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
	"github.com/STAYCALM1234/mabest-alum/pkg/redis"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

// Context keys set by the auth middlewares
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxTokenJTI  = "token_jti"
	CtxTokenExp  = "token_exp"
	CtxPrincipal = "principal"
)

var (
	errMissingToken = errors.New("missing authorization header")
	errBadHeader    = errors.New("authorization header must be Bearer <token>")
	errRevoked      = errors.New("session has been signed out")
)

// authenticate parses the bearer token and checks the revocation list.
// A nil rdb or a Redis failure skips the revocation check.
func authenticate(c *gin.Context, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*jwt.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, errBadHeader
	}

	claims, err := jwtMgr.ParseToken(parts[1])
	if err != nil {
		return nil, err
	}

	if rdb != nil {
		revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Warn("revocation check failed, accepting token", zap.Error(err))
		} else if revoked {
			return nil, errRevoked
		}
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxTokenJTI, claims.ID)
	c.Set(CtxTokenExp, claims.ExpiresAt.Time)
}

// JWTAuth requires a valid, unrevoked session token
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, jwtMgr, rdb, logger)
		if err != nil {
			msg := "session is invalid or expired"
			if errors.Is(err, errMissingToken) || errors.Is(err, errBadHeader) || errors.Is(err, errRevoked) {
				msg = err.Error()
			}
			response.Unauthorized(c, 10002, msg)
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth injects the identity when a valid token is present and never rejects
func OptionalAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := authenticate(c, jwtMgr, rdb, logger); err == nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// PrincipalResolver classifies an authenticated email
type PrincipalResolver interface {
	Classify(ctx context.Context, email string) (*service.Principal, error)
}

// RequireRole re-resolves the principal on every request and admits only the given roles.
// Must run after JWTAuth.
func RequireRole(resolver PrincipalResolver, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(CtxEmail)
		if email == "" {
			response.Unauthorized(c, 10002, "not signed in")
			c.Abort()
			return
		}

		p, err := resolver.Classify(c.Request.Context(), email)
		if err != nil {
			_ = c.Error(err)
			response.InternalError(c)
			c.Abort()
			return
		}

		for _, r := range roles {
			if p.Role == r {
				c.Set(CtxPrincipal, p)
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "you do not have access to this resource")
		c.Abort()
	}
}

// TokenExpiry reads the expiry injected by JWTAuth
func TokenExpiry(c *gin.Context) time.Time {
	if v, ok := c.Get(CtxTokenExp); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
