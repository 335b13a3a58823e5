package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/internal/model"
)

// AdminRepository administrator data access
type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
}

type adminRepo struct {
	db *gorm.DB
}

// NewAdminRepo creates an AdminRepository
func NewAdminRepo(db *gorm.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) Create(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
