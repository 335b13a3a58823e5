package storage

import (
	"fmt"

	"github.com/STAYCALM1234/mabest-alum/config"
)

// New builds the ObjectStore selected by cfg.Driver
func New(cfg *config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStore(cfg.Local.Root, cfg.Local.PublicBaseURL)
	case "minio":
		m := cfg.Minio
		return NewMinioStore(m.Endpoint, m.AccessKey, m.SecretKey, cfg.Bucket, m.UseSSL, m.PublicBaseURL)
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary.URL, cfg.Cloudinary.Folder)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
