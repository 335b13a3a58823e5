package repository

import "gorm.io/gorm"

// Repository aggregates every repository
type Repository struct {
	Credential CredentialRepository
	Admin      AdminRepository
	Alumni     AlumniRepository
	Gallery    GalleryRepository
}

// NewRepository builds the aggregate over one gorm handle
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Credential: NewCredentialRepo(db),
		Admin:      NewAdminRepo(db),
		Alumni:     NewAlumniRepo(db),
		Gallery:    NewGalleryRepo(db),
	}
}
