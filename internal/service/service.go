package service

import (
	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
	"github.com/STAYCALM1234/mabest-alum/pkg/events"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
	"github.com/STAYCALM1234/mabest-alum/pkg/storage"
)

// Service aggregates every workflow
type Service struct {
	Auth         AuthService
	Session      SessionService
	Registration RegistrationService
	Approval     ApprovalService
	Gallery      GalleryService
}

// NewService wires the workflows over shared collaborators.
// revoker may be nil, in which case sign-out cannot revoke tokens.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	store storage.ObjectStore,
	publisher events.Publisher,
	logger *zap.Logger,
) *Service {
	auth := NewAuthService(cfg, repo, jwtMgr, revoker, logger)
	return &Service{
		Auth:         auth,
		Session:      NewSessionService(auth, repo, logger),
		Registration: NewRegistrationService(cfg, auth, repo, logger),
		Approval:     NewApprovalService(repo, publisher, logger),
		Gallery:      NewGalleryService(cfg, repo, store, logger),
	}
}
