package domain

import "time"

// Client Model, the customer an order is placed for
type Client struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                       // Primary key
	Name      string     `gorm:"size:100;not null" json:"name"`              // First name
	LastName  string     `gorm:"size:100" json:"last_name"`                  // Surname
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"` // Unique email
	CPF       string     `gorm:"size:11;uniqueIndex;not null" json:"cpf"`    // Taxpayer number, digits only
	Phone     string     `gorm:"size:20" json:"phone"`                       // Contact phone
	BirthDate *time.Time `json:"birth_date,omitempty"`                       // Optional birth date
	Active    bool       `gorm:"not null" json:"active"`                     // False once soft deleted
	Addresses []Address  `gorm:"constraint:OnDelete:CASCADE;" json:"addresses,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FullName joins first name and surname
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.Name
	}
	return c.Name + " " + c.LastName
}

// PrimaryAddress returns the address flagged as primary, if loaded
func (c *Client) PrimaryAddress() (Address, bool) {
	for _, a := range c.Addresses {
		if a.IsPrimary {
			return a, true
		}
	}
	return Address{}, false
}
