package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateClientInput describes a new client and its addresses
type CreateClientInput struct {
	Name      string
	LastName  string
	Email     string
	CPF       string
	Phone     string
	BirthDate *time.Time
	Addresses []AddressInput
}

// UpdateClientInput holds the editable client fields; nil means unchanged
type UpdateClientInput struct {
	Name      *string
	LastName  *string
	Email     *string
	Phone     *string
	BirthDate *time.Time
}

// ClientFilter narrows a client listing
type ClientFilter struct {
	Name   string // Matches first name or surname
	Email  string
	City   string // City of the primary address
	Active *bool
	Page
}

// ClientService manages clients and their addresses
type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// Create registers a client. At least one address is required and exactly
// one of them ends up primary (the first, unless another is flagged).
func (s *ClientService) Create(ctx context.Context, in CreateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email)) // Emails are stored lowercase
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	if !utils.IsValidCPF(in.CPF) { // 11 digits once punctuation is removed
		return nil, apperr.Validation("Invalid CPF")
	}
	cpf := utils.OnlyDigits(in.CPF) // Stored digits only
	if len(in.Addresses) == 0 {
		return nil, apperr.Validation("At least one address is required")
	}
	primaries := 0 // Addresses flagged as primary
	for _, a := range in.Addresses {
		if err := a.validate(); err != nil { // Validate each address
			return nil, err
		}
		if a.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return nil, apperr.Validation("Only one address can be primary")
	}

	client := domain.Client{
		Name:      name,
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		CPF:       cpf,
		Phone:     strings.TrimSpace(in.Phone),
		BirthDate: in.BirthDate,
		Active:    true,
	}
	for i, a := range in.Addresses {
		addr := a.toDomain()
		addr.IsPrimary = a.IsPrimary || (primaries == 0 && i == 0) // First address is primary unless another is flagged
		client.Addresses = append(client.Addresses, addr)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := exists(tx.Model(&domain.Client{}).Where("email = ?", email))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Email already registered")
		}
		taken, err = exists(tx.Model(&domain.Client{}).Where("cpf = ?", cpf))
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("CPF already registered")
		}
		return tx.Create(&client).Error // Insert client and addresses
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"client_id": client.ID, "addresses": len(client.Addresses)}).Info("Client created")
	return &client, nil
}

// Get returns a client with its addresses
func (s *ClientService) Get(ctx context.Context, id uint) (*domain.Client, error) {
	var client domain.Client
	if err := s.db.WithContext(ctx).Preload("Addresses").First(&client, id).Error; err != nil {
		return nil, notFound(err, "Client not found")
	}
	return &client, nil
}

// List returns clients matching the filter
func (s *ClientService) List(ctx context.Context, f ClientFilter) ([]domain.Client, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&domain.Client{}) // Base query
	if f.Name != "" {
		pattern := likePattern(f.Name)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(last_name) LIKE ?", pattern, pattern)
	}
	if f.Email != "" {
		q = q.Where("LOWER(email) LIKE ?", likePattern(f.Email))
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.City != "" {
		sub := db.Model(&domain.Address{}).Select("client_id").
			Where("is_primary = ? AND LOWER(city) LIKE ?", true, likePattern(f.City))
		q = q.Where("id IN (?)", sub)
	}
	var clients []domain.Client
	err := f.Page.apply(q.Preload("Addresses").Order("id")).Find(&clients).Error
	return clients, err
}

// Update changes the given client fields, keeping emails unique
func (s *ClientService) Update(ctx context.Context, id uint, in UpdateClientInput) (*domain.Client, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.Client
		if err := tx.First(&client, id).Error; err != nil {
			return notFound(err, "Client not found")
		}
		changes := map[string]any{} // Columns to update
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("Name cannot be empty")
			}
			changes["name"] = name
		}
		if in.LastName != nil {
			changes["last_name"] = strings.TrimSpace(*in.LastName)
		}
		if in.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*in.Email))
			if email != client.Email {
				taken, err := exists(tx.Model(&domain.Client{}).Where("email = ? AND id <> ?", email, id))
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("Email already registered")
				}
			}
			changes["email"] = email
		}
		if in.Phone != nil {
			changes["phone"] = strings.TrimSpace(*in.Phone)
		}
		if in.BirthDate != nil {
			changes["birth_date"] = *in.BirthDate
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&client).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a client, or only deactivates it when it has orders.
// It reports whether the delete was soft.
func (s *ClientService) Delete(ctx context.Context, id uint) (bool, error) {
	soft := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.Client
		if err := tx.First(&client, id).Error; err != nil {
			return notFound(err, "Client not found")
		}
		hasOrders, err := exists(tx.Model(&domain.Order{}).Where("client_id = ?", id)) // Orders keep the client alive
		if err != nil {
			return err
		}
		if hasOrders {
			soft = true
			return tx.Model(&client).Update("active", false).Error // Soft delete
		}
		if err := tx.Where("client_id = ?", id).Delete(&domain.Address{}).Error; err != nil {
			return err
		}
		return tx.Delete(&client).Error // Hard delete
	})
	if err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{"client_id": id, "soft": soft}).Info("Client deleted")
	return soft, nil
}
