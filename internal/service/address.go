package service

import (
	"context"
	"ecommerce_api/internal/apperr"
	"ecommerce_api/internal/domain"
	"ecommerce_api/internal/utils"
	"strings"

	"gorm.io/gorm"
)

// AddressInput is a full address
type AddressInput struct {
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
	IsPrimary    bool
}

func (a AddressInput) validate() error {
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.State) == "" {
		return apperr.Validation("Street, city and state are required")
	}
	if len(utils.OnlyDigits(a.ZipCode)) != 8 {
		return apperr.Validation("Zip code must have 8 digits")
	}
	return nil
}

func (a AddressInput) toDomain() domain.Address {
	return domain.Address{
		Street:       strings.TrimSpace(a.Street),
		Number:       strings.TrimSpace(a.Number),
		Complement:   strings.TrimSpace(a.Complement),
		Neighborhood: strings.TrimSpace(a.Neighborhood),
		City:         strings.TrimSpace(a.City),
		State:        strings.TrimSpace(a.State),
		ZipCode:      utils.OnlyDigits(a.ZipCode),
		IsPrimary:    a.IsPrimary,
	}
}

// UpdateAddressInput holds the editable address fields; nil means unchanged
type UpdateAddressInput struct {
	Street       *string
	Number       *string
	Complement   *string
	Neighborhood *string
	City         *string
	State        *string
	ZipCode      *string
	IsPrimary    *bool
}

// AddressFilter narrows the addresses of one client
type AddressFilter struct {
	AddressID uint
	IsPrimary *bool
}

func requireClient(tx *gorm.DB, clientID uint) error {
	var client domain.Client
	if err := tx.Select("id").First(&client, clientID).Error; err != nil {
		return notFound(err, "Client not found")
	}
	return nil
}

func findAddress(tx *gorm.DB, clientID, addressID uint) (*domain.Address, error) {
	var addr domain.Address
	if err := tx.Where("id = ? AND client_id = ?", addressID, clientID).First(&addr).Error; err != nil {
		return nil, notFound(err, "Address not found")
	}
	return &addr, nil
}

// demoteOthers clears the primary flag on every other address of the client
func demoteOthers(tx *gorm.DB, clientID, keepID uint) error {
	return tx.Model(&domain.Address{}).
		Where("client_id = ? AND id <> ? AND is_primary = ?", clientID, keepID, true).
		Update("is_primary", false).Error
}

// ListAddresses returns the addresses of a client
func (s *ClientService) ListAddresses(ctx context.Context, clientID uint, f AddressFilter) ([]domain.Address, error) {
	db := s.db.WithContext(ctx)
	if err := requireClient(db, clientID); err != nil {
		return nil, err
	}
	q := db.Where("client_id = ?", clientID) // Addresses of the client
	if f.AddressID != 0 {
		q = q.Where("id = ?", f.AddressID)
	}
	if f.IsPrimary != nil {
		q = q.Where("is_primary = ?", *f.IsPrimary)
	}
	var addrs []domain.Address
	err := q.Order("id").Find(&addrs).Error
	return addrs, err
}

// CreateAddress adds an address. The first address of a client is always
// primary; a new primary address demotes the previous one.
func (s *ClientService) CreateAddress(ctx context.Context, clientID uint, in AddressInput) (*domain.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	addr := in.toDomain() // Normalized address
	addr.ClientID = clientID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireClient(tx, clientID); err != nil {
			return err
		}
		hasAny, err := exists(tx.Model(&domain.Address{}).Where("client_id = ?", clientID)) // Does the client have addresses yet
		if err != nil {
			return err
		}
		addr.IsPrimary = in.IsPrimary || !hasAny       // The first address is always primary
		if err := tx.Create(&addr).Error; err != nil { // Insert address
			return err
		}
		if addr.IsPrimary { // The primary address must stay
			return demoteOthers(tx, clientID, addr.ID) // Keep exactly one primary
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// UpdateAddress edits an address. Unflagging the primary address is
// rejected: another address must be made primary instead.
func (s *ClientService) UpdateAddress(ctx context.Context, clientID, addressID uint, in UpdateAddressInput) (*domain.Address, error) {
	var addr *domain.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if addr, err = findAddress(tx, clientID, addressID); err != nil {
			return err
		}
		setString := func(dst *string, src *string) {
			if src != nil {
				*dst = strings.TrimSpace(*src)
			}
		}
		setString(&addr.Street, in.Street)
		setString(&addr.Number, in.Number)
		setString(&addr.Complement, in.Complement)
		setString(&addr.Neighborhood, in.Neighborhood)
		setString(&addr.City, in.City)
		setString(&addr.State, in.State)
		if in.ZipCode != nil {
			addr.ZipCode = utils.OnlyDigits(*in.ZipCode)
		}
		check := AddressInput{Street: addr.Street, City: addr.City, State: addr.State, ZipCode: addr.ZipCode}
		if err := check.validate(); err != nil {
			return err
		}
		if in.IsPrimary != nil {
			if *in.IsPrimary {
				if err := demoteOthers(tx, clientID, addr.ID); err != nil {
					return err
				}
				addr.IsPrimary = true
			} else if addr.IsPrimary {
				return apperr.Validation("A client must keep a primary address. Set another address as primary instead")
			}
		}
		return tx.Save(addr).Error // Persist the edited address
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// DeleteAddress removes an address unless it is the only or the primary one
func (s *ClientService) DeleteAddress(ctx context.Context, clientID, addressID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addr, err := findAddress(tx, clientID, addressID)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&domain.Address{}).Where("client_id = ?", clientID).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return apperr.Validation("Cannot remove the only address of the client")
		}
		if addr.IsPrimary { // The primary address must stay
			return apperr.Validation("Cannot remove the primary address. Set another address as primary first")
		}
		return tx.Delete(addr).Error // Remove a secondary address
	})
}
