package model

import "time"

// GalleryImage uploaded photo metadata, maps to gallery_images.
// UploadedBy is the uploader's email, denormalised rather than a foreign key.
type GalleryImage struct {
	ImageID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	URL        string    `gorm:"type:text;not null"                             json:"url"`
	StorageKey string    `gorm:"type:varchar(512);not null"                     json:"-"`
	Caption    string    `gorm:"type:varchar(500);not null"                     json:"caption"`
	UploadedBy string    `gorm:"type:varchar(255);not null;index"               json:"uploaded_by"`
	UploadedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"uploaded_at"`
}

// TableName table name
func (GalleryImage) TableName() string { return "gallery_images" }
