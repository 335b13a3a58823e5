package model

// Credential login identity, maps to credentials.
// Admin and Alumni rows reuse CredentialID as their primary key.
type Credential struct {
	CredentialID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"credential_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel
}

// TableName table name
func (Credential) TableName() string { return "credentials" }
