package handler

import "github.com/STAYCALM1234/mabest-alum/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth     *AuthHandler
	Approval *ApprovalHandler
	Gallery  *GalleryHandler
}

// NewHandler builds the handlers over the service aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Session, svc.Registration),
		Approval: NewApprovalHandler(svc.Approval),
		Gallery:  NewGalleryHandler(svc.Gallery),
	}
}
