package model

import "time"

// Admin administrator account, maps to admins. Active from creation, never approved.
type Admin struct {
	AdminID   string    `gorm:"type:uuid;primaryKey"                         json:"id"`
	Username  string    `gorm:"type:varchar(100);not null"                   json:"username"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"       json:"email"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"created_at"`
}

// TableName table name
func (Admin) TableName() string { return "admins" }
