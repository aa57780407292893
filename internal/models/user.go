package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole defines the access level of an account
type UserRole string

const (
	RolePowerUser UserRole = "power_user"
	RoleAdmin     UserRole = "admin"
)

// User represents a dashboard account
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type User struct {
	ID         string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email      string     `gorm:"unique;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	Name       string     `json:"name,omitempty"`
	Role       UserRole   `gorm:"type:varchar(20);default:'power_user'" json:"role"`
	IsActive   bool       `gorm:"default:true" json:"isActive"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	LoginCount int        `gorm:"default:0" json:"loginCount"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
