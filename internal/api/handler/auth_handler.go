package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/STAYCALM1234/mabest-alum/internal/api/middleware"
	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/service"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

// AuthHandler login, logout, session and registration endpoints
type AuthHandler struct {
	sessionSvc      service.SessionService
	registrationSvc service.RegistrationService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(sessionSvc service.SessionService, registrationSvc service.RegistrationService) *AuthHandler {
	return &AuthHandler{sessionSvc: sessionSvc, registrationSvc: registrationSvc}
}

// Login signs in as admin or alumni
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.sessionSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the current session token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, ok := mustGetString(c, middleware.CtxTokenJTI)
	if !ok {
		return
	}

	if err := h.sessionSvc.Logout(c.Request.Context(), jti, middleware.TokenExpiry(c)); err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Session resolves the caller. Anonymous or invalid sessions yield role "none".
// GET /api/v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	email := c.GetString(middleware.CtxEmail)
	if email == "" {
		response.OK(c, dto.SessionResponse{Role: dto.RoleNone})
		return
	}

	result, err := h.sessionSvc.Current(c.Request.Context(), email)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RegisterAlumni self-registration, pending approval
// POST /api/v1/auth/register
func (h *AuthHandler) RegisterAlumni(c *gin.Context) {
	var req dto.RegisterAlumniRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.registrationSvc.RegisterAlumni(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, result)
}

// RegisterAdmin administrator registration gated by the setup key
// POST /api/v1/auth/admin-register
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.registrationSvc.RegisterAdmin(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, result)
}

// Courses registration course catalogue
// GET /api/v1/courses
func (h *AuthHandler) Courses(c *gin.Context) {
	response.OK(c, h.registrationSvc.Courses())
}

func (h *AuthHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, err.Error())
	case errors.Is(err, service.ErrNotAdmin):
		response.Forbidden(c, 11002, err.Error())
	case errors.Is(err, service.ErrNotApproved):
		response.Forbidden(c, 11003, err.Error())
	case errors.Is(err, service.ErrInvalidLoginType):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 12001, err.Error())
	case errors.Is(err, service.ErrUnknownCourse):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, service.ErrInvalidSetupKey):
		response.Error(c, http.StatusForbidden, 12003, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12004, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
