package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/internal/model"
)

// CredentialRepository credential data access
type CredentialRepository interface {
	Create(ctx context.Context, cred *model.Credential) error
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
	Delete(ctx context.Context, id string) error
}

type credentialRepo struct {
	db *gorm.DB
}

// NewCredentialRepo creates a CredentialRepository
func NewCredentialRepo(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *credentialRepo) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("credential_id = ?", id).
		Delete(&model.Credential{}).Error
}
