package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/service"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApprovalHandler admin dashboard endpoints
type ApprovalHandler struct {
	approvalSvc service.ApprovalService
}

// NewApprovalHandler creates an ApprovalHandler
func NewApprovalHandler(approvalSvc service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalSvc: approvalSvc}
}

// ListProfiles alumni applications with counts
// GET /api/v1/admin/profiles?status=pending&keyword=ada
func (h *ApprovalHandler) ListProfiles(c *gin.Context) {
	var req dto.ProfileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.approvalSvc.ListProfiles(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, result)
}

// SetApproval approve or reject one profile
// PATCH /api/v1/admin/profiles/:id/approval
func (h *ApprovalHandler) SetApproval(c *gin.Context) {
	var req dto.SetApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "approved must be true or false")
		return
	}

	result, err := h.approvalSvc.SetApproval(c.Request.Context(), c.Param("id"), *req.Approved)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportProfiles download every profile as .xlsx
// GET /api/v1/admin/profiles/export
func (h *ApprovalHandler) ExportProfiles(c *gin.Context) {
	buf, filename, err := h.approvalSvc.ExportProfiles(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ApprovalHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 13002, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
