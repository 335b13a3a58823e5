package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
)

// ── Registration errors ──

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUnknownCourse    = errors.New("please select a valid course")
	ErrInvalidSetupKey  = errors.New("invalid admin setup key")
)

// Registration results
const (
	RegistrationPending = "pending"
	RegistrationActive  = "active"
)

// RegistrationService creates a credential plus its profile row
type RegistrationService interface {
	// RegisterAlumni leaves the profile pending approval
	RegisterAlumni(ctx context.Context, req *dto.RegisterAlumniRequest) (*dto.RegisterResponse, error)
	// RegisterAdmin requires the configured setup key; the account is active immediately
	RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.RegisterResponse, error)
	Courses() []string
}

type registrationService struct {
	cfg    *config.Config
	auth   AuthService
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRegistrationService creates a RegistrationService
func NewRegistrationService(
	cfg *config.Config,
	auth AuthService,
	repo *repository.Repository,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{cfg: cfg, auth: auth, repo: repo, logger: logger}
}

func (s *registrationService) RegisterAlumni(ctx context.Context, req *dto.RegisterAlumniRequest) (*dto.RegisterResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if !model.IsKnownCourse(req.Course) {
		return nil, ErrUnknownCourse
	}

	cred, err := s.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	alumni := &model.Alumni{
		AlumniID: cred.CredentialID,
		Name:     strings.TrimSpace(req.Name),
		Email:    cred.Email,
		Phone:    strings.TrimSpace(req.Phone),
		Course:   req.Course,
	}
	if err := s.repo.Alumni.Create(ctx, alumni); err != nil {
		s.rollback(ctx, cred, err)
		return nil, profileInsertError(err)
	}

	s.logger.Info("alumni registered, awaiting approval",
		zap.String("alumni_id", alumni.AlumniID),
		zap.String("course", alumni.Course),
	)

	return &dto.RegisterResponse{
		ID:     alumni.AlumniID,
		Email:  alumni.Email,
		Status: RegistrationPending,
	}, nil
}

func (s *registrationService) RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.RegisterResponse, error) {
	if !s.setupKeyMatches(req.SetupKey) {
		return nil, ErrInvalidSetupKey
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	cred, err := s.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		AdminID:  cred.CredentialID,
		Username: strings.TrimSpace(req.Username),
		Email:    cred.Email,
	}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		s.rollback(ctx, cred, err)
		return nil, profileInsertError(err)
	}

	s.logger.Info("administrator registered", zap.String("admin_id", admin.AdminID))

	return &dto.RegisterResponse{
		ID:     admin.AdminID,
		Email:  admin.Email,
		Status: RegistrationActive,
	}, nil
}

func (s *registrationService) Courses() []string {
	out := make([]string, len(model.Courses))
	copy(out, model.Courses)
	return out
}

// setupKeyMatches compares in constant time; an unset key matches nothing
func (s *registrationService) setupKeyMatches(key string) bool {
	expected := s.cfg.Auth.AdminSetupKey
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}

// rollback deletes the credential created for a profile that could not be inserted
func (s *registrationService) rollback(ctx context.Context, cred *model.Credential, cause error) {
	if err := s.auth.DeleteCredential(context.WithoutCancel(ctx), cred.CredentialID); err != nil {
		s.logger.Error("orphaned credential after failed profile insert",
			zap.String("credential_id", cred.CredentialID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("credential rolled back after failed profile insert",
		zap.String("credential_id", cred.CredentialID),
		zap.Error(cause),
	)
}

func profileInsertError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailExists
	}
	return err
}
