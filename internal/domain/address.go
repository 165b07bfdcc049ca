package domain

import (
	"fmt"
	"strings"
)

// Address Model. Every client owns at least one and exactly one is primary.
type Address struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ClientID     uint   `gorm:"index;not null" json:"client_id"`
	Street       string `gorm:"size:150;not null" json:"street"`
	Number       string `gorm:"size:20" json:"number"`
	Complement   string `gorm:"size:100" json:"complement"`
	Neighborhood string `gorm:"size:100" json:"neighborhood"`
	City         string `gorm:"size:100;not null" json:"city"`
	State        string `gorm:"size:50;not null" json:"state"`
	ZipCode      string `gorm:"size:8;not null" json:"zip_code"`
	IsPrimary    bool   `gorm:"not null;default:false" json:"is_primary"`
}

// Format renders the address as a single shipping line
func (a Address) Format() string {
	line := a.Street
	if a.Number != "" {
		line += ", " + a.Number
	}
	if a.Complement != "" {
		line += " - " + a.Complement
	}
	parts := []string{line}
	if a.Neighborhood != "" {
		parts = append(parts, a.Neighborhood)
	}
	parts = append(parts, fmt.Sprintf("%s/%s", a.City, a.State), a.ZipCode)
	return strings.Join(parts, ", ")
}
