package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/STAYCALM1234/mabest-alum/internal/api/middleware"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

// MustGetUserID reads the user_id injected by JWTAuth.
// Writes a 401 and returns false when it is missing; callers just return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetEmail reads the session email injected by JWTAuth
func MustGetEmail(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxEmail)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	s := c.GetString(key)
	if s == "" {
		response.Unauthorized(c, 10002, "not signed in")
		return "", false
	}
	return s, true
}
