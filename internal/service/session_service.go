package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
)

var (
	ErrNotAdmin         = errors.New("this account does not have administrator access")
	ErrNotApproved      = errors.New("your account has not been approved yet")
	ErrInvalidLoginType = errors.New("login type must be admin or alumni")
)

// Principal the classified identity behind a session.
// Role is dto.RoleAdmin, dto.RoleUser or dto.RoleNone.
type Principal struct {
	Role         string
	Email        string
	Admin        *model.Admin
	Alumni       *model.Alumni
	Applications []model.Alumni // every profile, prefetched for administrators
}

// SessionService classifies principals and runs the login/logout flows
type SessionService interface {
	// Resolve classifies an authenticated email. Pending, rejected and
	// missing profiles all collapse to RoleNone.
	Resolve(ctx context.Context, email string) (*Principal, error)
	// Classify is Resolve without the profile prefetch, for per-request role checks
	Classify(ctx context.Context, email string) (*Principal, error)
	// Current is Resolve shaped for the session endpoint
	Current(ctx context.Context, email string) (*dto.SessionResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type sessionService struct {
	auth   AuthService
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSessionService creates a SessionService
func NewSessionService(auth AuthService, repo *repository.Repository, logger *zap.Logger) SessionService {
	return &sessionService{auth: auth, repo: repo, logger: logger}
}

func (s *sessionService) Resolve(ctx context.Context, email string) (*Principal, error) {
	return s.classify(ctx, email, true)
}

func (s *sessionService) Classify(ctx context.Context, email string) (*Principal, error) {
	return s.classify(ctx, email, false)
}

func (s *sessionService) classify(ctx context.Context, email string, prefetch bool) (*Principal, error) {
	email = normalizeEmail(email)
	if email == "" {
		return &Principal{Role: dto.RoleNone}, nil
	}

	p, err := s.resolveAdmin(ctx, email, prefetch)
	if err != nil || p != nil {
		return p, err
	}

	p, err = s.resolveAlumni(ctx, email)
	if err != nil || p != nil {
		return p, err
	}
	return &Principal{Role: dto.RoleNone, Email: email}, nil
}

// resolveAdmin returns nil, nil when email is not an administrator.
// prefetch loads every profile into Applications.
func (s *sessionService) resolveAdmin(ctx context.Context, email string, prefetch bool) (*Principal, error) {
	admin, err := s.repo.Admin.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("look up admin failed", zap.Error(err))
		return nil, err
	}

	p := &Principal{Role: dto.RoleAdmin, Email: email, Admin: admin}
	if !prefetch {
		return p, nil
	}

	p.Applications, err = s.repo.Alumni.List(ctx)
	if err != nil {
		s.logger.Error("prefetch alumni profiles failed", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// resolveAlumni returns nil, nil unless email has a profile approved exactly true
func (s *sessionService) resolveAlumni(ctx context.Context, email string) (*Principal, error) {
	alumni, err := s.repo.Alumni.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("look up alumni failed", zap.Error(err))
		return nil, err
	}
	if !alumni.IsApproved() {
		return nil, nil
	}
	return &Principal{Role: dto.RoleUser, Email: email, Alumni: alumni}, nil
}

func (s *sessionService) Current(ctx context.Context, email string) (*dto.SessionResponse, error) {
	p, err := s.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	resp := toSessionResponse(p)
	return &resp, nil
}

func (s *sessionService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	sess, err := s.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	var (
		p       *Principal
		denyErr error
	)
	switch req.Type {
	case dto.LoginTypeAdmin:
		p, err = s.resolveAdmin(ctx, sess.Credential.Email, true)
		denyErr = ErrNotAdmin
	case dto.LoginTypeAlumni:
		p, err = s.resolveAlumni(ctx, sess.Credential.Email)
		denyErr = ErrNotApproved
	default:
		err = ErrInvalidLoginType
	}

	if err == nil && p == nil {
		err = denyErr
	}
	if err != nil {
		// the credential was valid but the session must not survive
		s.signBackOut(ctx, sess)
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: sess.Token,
		ExpiresIn:   int(time.Until(sess.ExpiresAt).Seconds()),
		Role:        p.Role,
		Session:     toSessionResponse(p),
	}, nil
}

func (s *sessionService) signBackOut(ctx context.Context, sess *Session) {
	if err := s.auth.SignOut(ctx, sess.ID, sess.ExpiresAt); err != nil {
		s.logger.Warn("sign back out failed",
			zap.String("email", sess.Credential.Email),
			zap.Error(err),
		)
	}
}

func (s *sessionService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.auth.SignOut(ctx, jti, expiresAt)
}

// ── converters ──

func toSessionResponse(p *Principal) dto.SessionResponse {
	resp := dto.SessionResponse{Role: p.Role}
	if p.Admin != nil {
		resp.Admin = toAdminResponse(p.Admin)
	}
	if p.Alumni != nil {
		a := toAlumniResponse(p.Alumni)
		resp.Profile = &a
	}
	if p.Role == dto.RoleAdmin {
		resp.Applications = toAlumniResponses(p.Applications)
	}
	return resp
}

func toAdminResponse(a *model.Admin) *dto.AdminResponse {
	return &dto.AdminResponse{
		ID:        a.AdminID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

func toAlumniResponse(a *model.Alumni) dto.AlumniResponse {
	return dto.AlumniResponse{
		ID:        a.AlumniID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Course:    a.Course,
		Approved:  a.Approved,
		Status:    a.Status(),
		CreatedAt: a.CreatedAt,
	}
}

func toAlumniResponses(list []model.Alumni) []dto.AlumniResponse {
	out := make([]dto.AlumniResponse, 0, len(list))
	for i := range list {
		out = append(out, toAlumniResponse(&list[i]))
	}
	return out
}
