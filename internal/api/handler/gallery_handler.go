package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/service"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

// GalleryHandler photo gallery endpoints
type GalleryHandler struct {
	gallerySvc service.GalleryService
}

// NewGalleryHandler creates a GalleryHandler
func NewGalleryHandler(gallerySvc service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallerySvc: gallerySvc}
}

// List every gallery image, newest first
// GET /api/v1/gallery
func (h *GalleryHandler) List(c *gin.Context) {
	result, err := h.gallerySvc.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Mine the caller's own uploads
// GET /api/v1/gallery/mine
func (h *GalleryHandler) Mine(c *gin.Context) {
	email, ok := MustGetEmail(c)
	if !ok {
		return
	}

	result, err := h.gallerySvc.ListByUploader(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Upload multipart: file + caption
// POST /api/v1/gallery
func (h *GalleryHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	email, ok := MustGetEmail(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 14002, service.ErrFileTooLarge.Error())
			return
		}
		response.BadRequest(c, 14006, service.ErrNotImage.Error())
		return
	}

	var form dto.UploadImageForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, 10001, "caption must be at most 500 characters")
		return
	}

	file, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	defer file.Close()

	result, err := h.gallerySvc.Upload(c.Request.Context(), &service.UploadInput{
		File:          file,
		Filename:      fh.Filename,
		ContentType:   fh.Header.Get("Content-Type"),
		Size:          fh.Size,
		Caption:       form.Caption,
		UploaderID:    userID,
		UploaderEmail: email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, result)
}

// Remove delete one of the caller's images
// DELETE /api/v1/gallery/:id
func (h *GalleryHandler) Remove(c *gin.Context) {
	email, ok := MustGetEmail(c)
	if !ok {
		return
	}

	if err := h.gallerySvc.Remove(c.Request.Context(), c.Param("id"), email); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *GalleryHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotImage):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 14002, err.Error())
	case errors.Is(err, service.ErrCaptionRequired):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrImageNotFound):
		response.NotFound(c, 14004, err.Error())
	case errors.Is(err, service.ErrNotImageOwner):
		response.Forbidden(c, 14005, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
