// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is the access role of a user
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
	RoleDelivery Role = "DELIVERY"
)

// User represents the user entity
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Email       string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string    `gorm:"not null;size:255" json:"-"`
	PhoneNumber string    `gorm:"size:20" json:"phoneNumber"`
	Address     *string   `gorm:"size:500" json:"address"`
	Role        Role      `gorm:"size:20;not null;default:'CUSTOMER'" json:"role"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate lowercases the email before insert
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasAddress reports whether a delivery address is on file
func (u *User) HasAddress() bool {
	return u.Address != nil && strings.TrimSpace(*u.Address) != ""
}

// DeliveryAddress returns the address or an empty string
func (u *User) DeliveryAddress() string {
	if u.Address == nil {
		return ""
	}
	return *u.Address
}
