package domain

import "time"

// User Model, an operator of the back office who places orders
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Name      string    `gorm:"size:100;not null" json:"name"`              // Display name
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"` // Unique login email
	Password  string    `gorm:"size:255;not null" json:"-"`                 // Hashed password
	Active    bool      `gorm:"not null" json:"active"`                     // Inactive users cannot log in
	Orders    []Order   `json:"-"`                                          // Orders placed by the user
	CreatedAt time.Time `json:"created_at"`                                 // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"`                                 // Last update timestamp
}
