package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email is already registered")
)

// TokenRevoker revokes session ids until they expire; *redis.Client satisfies it
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Session a freshly issued session token
type Session struct {
	Token      string
	ID         string // jti
	ExpiresAt  time.Time
	Credential *model.Credential
}

// AuthService credential store and session issuer
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*model.Credential, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, jti string, expiresAt time.Time) error
	// DeleteCredential removes a credential whose profile row could not be created
	DeleteCredential(ctx context.Context, id string) error
}

type authService struct {
	cfg     *config.Config
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:     cfg,
		repo:    repo,
		jwtMgr:  jwtMgr,
		revoker: revoker,
		logger:  logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*model.Credential, error) {
	email = normalizeEmail(email)

	_, err := s.repo.Credential.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("look up credential failed", zap.Error(err))
		return nil, err
	}

	cost := s.cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	cred := &model.Credential{
		CredentialID: uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Credential.Create(ctx, cred); err != nil {
		// lost a race against a concurrent sign-up for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("create credential failed", zap.Error(err))
		return nil, err
	}
	return cred, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	cred, err := s.repo.Credential.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("look up credential failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwtMgr.GenerateSessionToken(cred.CredentialID, cred.Email)
	if err != nil {
		s.logger.Error("sign session token failed", zap.Error(err))
		return nil, err
	}

	return &Session{
		Token:      token,
		ID:         claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
		Credential: cred,
	}, nil
}

func (s *authService) SignOut(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.revoker == nil {
		s.logger.Warn("no revocation store configured, token stays valid until expiry",
			zap.String("jti", jti),
			zap.Time("expires_at", expiresAt),
		)
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("revoke session failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) DeleteCredential(ctx context.Context, id string) error {
	return s.repo.Credential.Delete(ctx, id)
}
