package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
	"github.com/STAYCALM1234/mabest-alum/pkg/storage"
)

// ── Gallery errors ──

var (
	ErrNotImage        = storage.ErrNotImage
	ErrFileTooLarge    = storage.ErrFileTooLarge
	ErrCaptionRequired = errors.New("caption is required")
	ErrImageNotFound   = errors.New("image not found")
	ErrNotImageOwner   = errors.New("you can only delete your own photos")
)

// UploadInput one image plus its metadata
type UploadInput struct {
	File          io.Reader
	Filename      string
	ContentType   string
	Size          int64
	Caption       string
	UploaderID    string
	UploaderEmail string
}

// GalleryService photo gallery workflow
type GalleryService interface {
	// List newest upload first
	List(ctx context.Context) ([]dto.GalleryImageResponse, error)
	ListByUploader(ctx context.Context, email string) ([]dto.GalleryImageResponse, error)
	// Upload stores the object then inserts its metadata row.
	// When the URL or the row cannot be produced the stored object is deleted again.
	Upload(ctx context.Context, in *UploadInput) (*dto.GalleryImageResponse, error)
	// Remove deletes the metadata row only; the stored object is kept
	Remove(ctx context.Context, id, callerEmail string) error
}

type galleryService struct {
	cfg    *config.Config
	repo   *repository.Repository
	store  storage.ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewGalleryService creates a GalleryService
func NewGalleryService(
	cfg *config.Config,
	repo *repository.Repository,
	store storage.ObjectStore,
	logger *zap.Logger,
) GalleryService {
	return &galleryService{
		cfg:    cfg,
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *galleryService) List(ctx context.Context) ([]dto.GalleryImageResponse, error) {
	list, err := s.repo.Gallery.List(ctx)
	if err != nil {
		s.logger.Error("list gallery failed", zap.Error(err))
		return nil, err
	}
	return toGalleryResponses(list), nil
}

func (s *galleryService) ListByUploader(ctx context.Context, email string) ([]dto.GalleryImageResponse, error) {
	list, err := s.repo.Gallery.ListByUploader(ctx, normalizeEmail(email))
	if err != nil {
		s.logger.Error("list own gallery failed", zap.Error(err))
		return nil, err
	}
	return toGalleryResponses(list), nil
}

func (s *galleryService) Upload(ctx context.Context, in *UploadInput) (*dto.GalleryImageResponse, error) {
	caption := strings.TrimSpace(in.Caption)
	if caption == "" {
		return nil, ErrCaptionRequired
	}
	if err := storage.ValidateImage(in.ContentType, in.Size, s.cfg.Storage.MaxUploadBytes); err != nil {
		return nil, err
	}
	body, err := storage.SniffImage(in.File)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := storage.ObjectKey(in.UploaderID, in.Filename, in.ContentType, now)

	// 1. object
	if err := s.store.Put(ctx, key, body, in.Size, in.ContentType); err != nil {
		s.logger.Error("store image failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	// 2. public url
	url, err := s.store.PublicURL(ctx, key)
	if err != nil {
		s.logger.Error("resolve image url failed", zap.String("key", key), zap.Error(err))
		s.discard(ctx, key)
		return nil, err
	}

	// 3. metadata row
	img := &model.GalleryImage{
		ImageID:    uuid.New().String(),
		URL:        url,
		StorageKey: key,
		Caption:    caption,
		UploadedBy: normalizeEmail(in.UploaderEmail),
		UploadedAt: now,
	}
	if err := s.repo.Gallery.Create(ctx, img); err != nil {
		s.logger.Error("insert gallery row failed", zap.String("key", key), zap.Error(err))
		s.discard(ctx, key)
		return nil, err
	}

	resp := toGalleryResponse(img)
	return &resp, nil
}

// discard removes an object that never got a metadata row
func (s *galleryService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Error("orphaned gallery object", zap.String("key", key), zap.Error(err))
	}
}

func (s *galleryService) Remove(ctx context.Context, id, callerEmail string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrImageNotFound
	}
	img, err := s.repo.Gallery.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		s.logger.Error("look up gallery image failed", zap.String("image_id", id), zap.Error(err))
		return err
	}

	if normalizeEmail(img.UploadedBy) != normalizeEmail(callerEmail) {
		return ErrNotImageOwner
	}

	if err := s.repo.Gallery.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		s.logger.Error("delete gallery image failed", zap.String("image_id", id), zap.Error(err))
		return err
	}
	return nil
}

func toGalleryResponse(img *model.GalleryImage) dto.GalleryImageResponse {
	return dto.GalleryImageResponse{
		ID:         img.ImageID,
		URL:        img.URL,
		Caption:    img.Caption,
		UploadedBy: img.UploadedBy,
		UploadedAt: img.UploadedAt,
	}
}

func toGalleryResponses(list []model.GalleryImage) []dto.GalleryImageResponse {
	out := make([]dto.GalleryImageResponse, 0, len(list))
	for i := range list {
		out = append(out, toGalleryResponse(&list[i]))
	}
	return out
}
