package dto

// ── Gallery module DTOs ──

// UploadImageForm multipart fields accompanying the file part.
// An empty caption is rejected by the gallery service.
type UploadImageForm struct {
	Caption string `form:"caption" binding:"max=500"`
}
