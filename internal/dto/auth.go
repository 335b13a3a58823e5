package dto

// ── Auth module DTOs ──

// Login types accepted by LoginRequest.Type
const (
	LoginTypeAdmin  = "admin"
	LoginTypeAlumni = "alumni"
)

// Principal roles returned by the session resolver
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleNone  = "none"
)

// LoginRequest login request
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Type     string `json:"type"     binding:"required,oneof=admin alumni"`
}

// RegisterAlumniRequest alumni self-registration
type RegisterAlumniRequest struct {
	Name            string `json:"name"             binding:"required,min=2,max=100"`
	Email           string `json:"email"            binding:"required,email"`
	Phone           string `json:"phone"            binding:"required,max=30"`
	Course          string `json:"course"           binding:"required"`
	Password        string `json:"password"         binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegisterAdminRequest administrator registration, gated by the setup key
type RegisterAdminRequest struct {
	Username        string `json:"username"         binding:"required,min=2,max=100"`
	Email           string `json:"email"            binding:"required,email"`
	Password        string `json:"password"         binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	SetupKey        string `json:"setup_key"        binding:"required"`
}
