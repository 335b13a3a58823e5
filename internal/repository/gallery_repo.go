package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/internal/model"
)

// GalleryRepository gallery metadata data access
type GalleryRepository interface {
	Create(ctx context.Context, img *model.GalleryImage) error
	GetByID(ctx context.Context, id string) (*model.GalleryImage, error)
	// List returns every image, newest upload first
	List(ctx context.Context) ([]model.GalleryImage, error)
	ListByUploader(ctx context.Context, email string) ([]model.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

type galleryRepo struct {
	db *gorm.DB
}

// NewGalleryRepo creates a GalleryRepository
func NewGalleryRepo(db *gorm.DB) GalleryRepository {
	return &galleryRepo{db: db}
}

func (r *galleryRepo) Create(ctx context.Context, img *model.GalleryImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *galleryRepo) GetByID(ctx context.Context, id string) (*model.GalleryImage, error) {
	var img model.GalleryImage
	err := r.db.WithContext(ctx).
		Where("image_id = ?", id).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *galleryRepo) List(ctx context.Context) ([]model.GalleryImage, error) {
	var list []model.GalleryImage
	if err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *galleryRepo) ListByUploader(ctx context.Context, email string) ([]model.GalleryImage, error) {
	var list []model.GalleryImage
	if err := r.db.WithContext(ctx).
		Where("uploaded_by = ?", email).
		Order("uploaded_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *galleryRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("image_id = ?", id).
		Delete(&model.GalleryImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
