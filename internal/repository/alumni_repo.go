package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/internal/model"
)

// AlumniRepository alumni profile data access
type AlumniRepository interface {
	Create(ctx context.Context, alumni *model.Alumni) error
	GetByID(ctx context.Context, id string) (*model.Alumni, error)
	GetByEmail(ctx context.Context, email string) (*model.Alumni, error)
	// List returns every profile, newest first
	List(ctx context.Context) ([]model.Alumni, error)
	// SetApproval returns gorm.ErrRecordNotFound when no row has the id
	SetApproval(ctx context.Context, id string, approved bool) error
}

type alumniRepo struct {
	db *gorm.DB
}

// NewAlumniRepo creates an AlumniRepository
func NewAlumniRepo(db *gorm.DB) AlumniRepository {
	return &alumniRepo{db: db}
}

func (r *alumniRepo) Create(ctx context.Context, alumni *model.Alumni) error {
	return r.db.WithContext(ctx).Create(alumni).Error
}

func (r *alumniRepo) GetByID(ctx context.Context, id string) (*model.Alumni, error) {
	var alumni model.Alumni
	err := r.db.WithContext(ctx).
		Where("alumni_id = ?", id).
		First(&alumni).Error
	if err != nil {
		return nil, err
	}
	return &alumni, nil
}

func (r *alumniRepo) GetByEmail(ctx context.Context, email string) (*model.Alumni, error) {
	var alumni model.Alumni
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&alumni).Error
	if err != nil {
		return nil, err
	}
	return &alumni, nil
}

func (r *alumniRepo) List(ctx context.Context) ([]model.Alumni, error) {
	var list []model.Alumni
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *alumniRepo) SetApproval(ctx context.Context, id string, approved bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Alumni{}).
		Where("alumni_id = ?", id).
		Updates(map[string]interface{}{
			"approved":   approved,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
