package entity

import (
	"time"
)

// Driver is a chauffeur known to the fleet
type Driver struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id,omitempty"`
	FirstName     string    `gorm:"size:100;not null" json:"first_name" validate:"required"`
	LastName      string    `gorm:"size:100;not null" json:"last_name" validate:"required"`
	LicenceNumber string    `gorm:"size:50" json:"licence_number"`
	Phone         string    `gorm:"size:30" json:"phone"`
	Active        bool      `gorm:"not null" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Vehicle is a taxi of the fleet
type Vehicle struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlateNumber string    `gorm:"size:20;uniqueIndex;not null" json:"plate_number" validate:"required,max=20"`
	Brand       string    `gorm:"size:50" json:"brand"`
	Model       string    `gorm:"size:50" json:"model"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Client is an account customer that trips can be billed to
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name" validate:"required"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Email     string    `gorm:"size:150" json:"email" validate:"omitempty,email"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentMethod is how a trip or expense was paid (cash, card, invoice...)
type PaymentMethod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code" validate:"required,max=20"`
	Label     string    `gorm:"size:100;not null" json:"label" validate:"required"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
