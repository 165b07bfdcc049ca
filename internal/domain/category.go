package domain

import "time"

// Category Model
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                     // Primary key
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"` // Unique category name
	Description string    `gorm:"size:200" json:"description"`              // Free text description
	Active      bool      `gorm:"not null" json:"active"`                   // False once soft deleted
	Products    []Product `json:"-"`                                        // Products in the category
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
