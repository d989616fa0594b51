package models

import "gorm.io/gorm"

// User is referenced by orders (renter) and team members, never owned by them.
type User struct {
	gorm.Model
	Name       string `gorm:"not null;default:'--'" json:"name"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Password   string `json:"-"`
	Picture    string `json:"picture"`
	IsProvider bool   `gorm:"not null;default:false" json:"is_provider"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`
}
