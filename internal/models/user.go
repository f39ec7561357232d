package models

import "gorm.io/gorm"

// UserType distinguishes vendors from customers. Stored for display only;
// no vendor-specific logic hangs off it.
type UserType string

const (
	UserTypeVendor   UserType = "vendor"
	UserTypeCustomer UserType = "customer"
)

// User represents a user of the store.
type User struct {
	ID         string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string   `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"omitempty,min=3,max=100"`
	Email      string   `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string   `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	UserType   UserType `json:"user_type" gorm:"type:varchar(20);default:customer"`
	IsStaff    bool     `json:"is_staff"`
	gorm.Model `json:"-"`
}
