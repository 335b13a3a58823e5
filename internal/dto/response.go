package dto

import "time"

// ── Auth module responses ──

// LoginResponse session token plus the resolved principal
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	Role        string          `json:"role"`
	Session     SessionResponse `json:"session"`
}

// SessionResponse result of session resolution.
// Role is "admin", "user" or "none"; Applications is only filled for admins.
type SessionResponse struct {
	Role         string           `json:"role"`
	Admin        *AdminResponse   `json:"admin,omitempty"`
	Profile      *AlumniResponse  `json:"profile,omitempty"`
	Applications []AlumniResponse `json:"applications,omitempty"`
}

// RegisterResponse registration result
type RegisterResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"` // "pending" for alumni, "active" for admins
}

// AdminResponse administrator profile
type AdminResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ── Approval module responses ──

// AlumniResponse alumni profile with its approval tri-state
type AlumniResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Course    string    `json:"course"`
	Approved  *bool     `json:"approved"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileStats counts per approval state over the unfiltered list
type ProfileStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// ProfileListResponse admin dashboard payload
type ProfileListResponse struct {
	Profiles []AlumniResponse `json:"profiles"`
	Stats    ProfileStats     `json:"stats"`
}

// ── Gallery module responses ──

// GalleryImageResponse gallery entry
type GalleryImageResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}
