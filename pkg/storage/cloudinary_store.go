package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps gallery images on Cloudinary.
// Keys map to public IDs under folder with the extension stripped.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore builds a client from a cloudinary:// URL, or from
// CLOUDINARY_URL in the environment when rawURL is empty.
func NewCloudinaryStore(rawURL, folder string) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if rawURL != "" {
		cld, err = cloudinary.NewFromURL(rawURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) publicID(key string) string {
	return path.Join(s.folder, strings.TrimSuffix(key, path.Ext(key)))
}

func boolPtr(b bool) *bool {
	return &b
}

// Put uploads an image
func (s *CloudinaryStore) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     s.publicID(key),
		ResourceType: "image",
		Overwrite:    boolPtr(false),
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload: %w", err)
	}
	// API-level rejections come back in the result, not as err
	if res == nil || res.Error.Message != "" {
		return fmt.Errorf("cloudinary upload: %s", rejection(res))
	}
	return nil
}

// PublicURL builds the delivery URL of an uploaded image
func (s *CloudinaryStore) PublicURL(_ context.Context, key string) (string, error) {
	img, err := s.cld.Image(s.publicID(key))
	if err != nil {
		return "", fmt.Errorf("cloudinary asset: %w", err)
	}
	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cloudinary url: %w", err)
	}
	return u, nil
}

// Delete destroys an uploaded image
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: s.publicID(key)})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res == nil || res.Error.Message != "" {
		msg := "empty response"
		if res != nil {
			msg = res.Error.Message
		}
		return fmt.Errorf("cloudinary destroy: %s", msg)
	}
	switch res.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("cloudinary destroy: unexpected result %q", res.Result)
	}
}

func rejection(res *uploader.UploadResult) string {
	if res == nil {
		return "empty response"
	}
	return res.Error.Message
}
