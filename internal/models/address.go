package models

import "gorm.io/gorm"

// DeliveryAddress is a shipping destination for one user. At most one
// address per user may be flagged default; saving an address with IsDefault
// set unsets the flag on all of the user's other addresses.
type DeliveryAddress struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string `json:"user_id" gorm:"index;type:varchar(36)"`
	ContactName   string `json:"contact_name" validate:"required,max=100"`
	ContactPhone  string `json:"contact_phone" validate:"required,max=20"`
	AddressLine1  string `json:"address_line_1" validate:"required,max=255"`
	AddressLine2  string `json:"address_line_2" validate:"omitempty,max=255"`
	City          string `json:"city" validate:"required,max=100"`
	State         string `json:"state" validate:"required,max=100"`
	PostalZipCode string `json:"postal_zip_code" validate:"required,max=20"`
	Country       string `json:"country" validate:"required,max=100"`
	IsDefault     bool   `json:"is_default"`
	gorm.Model    `json:"-"`
}
