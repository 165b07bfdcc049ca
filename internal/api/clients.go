package api

import (
	"ecommerce_api/internal/service" // Business rules
	"net/http"                       // HTTP status codes
	"time"                           // Birth dates

	"github.com/gin-gonic/gin" // Gin web framework
)

// AddressRequest is a full address in a request body
type AddressRequest struct {
	Street       string `json:"street" binding:"required"`   // Street name
	Number       string `json:"number"`                      // House number
	Complement   string `json:"complement"`                  // Apartment, block
	Neighborhood string `json:"neighborhood"`                // Neighborhood
	City         string `json:"city" binding:"required"`     // City
	State        string `json:"state" binding:"required"`    // State
	ZipCode      string `json:"zip_code" binding:"required"` // Zip code, punctuation allowed
	IsPrimary    bool   `json:"is_primary"`                  // Default shipping address
}

func (r AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Street:       r.Street,
		Number:       r.Number,
		Complement:   r.Complement,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		State:        r.State,
		ZipCode:      r.ZipCode,
		IsPrimary:    r.IsPrimary,
	}
}

// UpdateAddressRequest changes only the fields present in the body
type UpdateAddressRequest struct {
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`
	IsPrimary    *bool   `json:"is_primary"`
}

// CreateClientRequest is the payload of POST /clients
type CreateClientRequest struct {
	Name      string           `json:"name" binding:"required"`        // First name
	LastName  string           `json:"last_name"`                      // Surname
	Email     string           `json:"email" binding:"required,email"` // Unique email
	CPF       string           `json:"cpf" binding:"required"`         // Taxpayer number
	Phone     string           `json:"phone"`                          // Contact phone
	BirthDate *time.Time       `json:"birth_date"`                     // RFC3339
	Addresses []AddressRequest `json:"addresses" binding:"dive"`       // At least one
}

// UpdateClientRequest changes only the fields present in the body
type UpdateClientRequest struct {
	Name      *string    `json:"name"`
	LastName  *string    `json:"last_name"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
}

// CreateClientHandler registers a client with its addresses
func CreateClientHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateClientRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := service.CreateClientInput{
			Name:      req.Name,
			LastName:  req.LastName,
			Email:     req.Email,
			CPF:       req.CPF,
			Phone:     req.Phone,
			BirthDate: req.BirthDate,
		}
		for _, a := range req.Addresses {
			in.Addresses = append(in.Addresses, a.input())
		}
		client, err := clients.Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, client)
	}
}

// ListClientsHandler lists clients with optional filters
func ListClientsHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := newQuery(c)
		filter := service.ClientFilter{
			Name:   c.Query("name"),
			Email:  c.Query("email"),
			City:   c.Query("city"),
			Active: q.Bool("active"),
			Page:   q.Page(),
		}
		if q.err != nil {
			respondError(c, q.err)
			return
		}
		list, err := clients.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetClientHandler returns one client with its addresses
func GetClientHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		client, err := clients.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// UpdateClientHandler edits a client's personal data
func UpdateClientHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		client, err := clients.Update(c.Request.Context(), id, service.UpdateClientInput{
			Name:      req.Name,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			BirthDate: req.BirthDate,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// DeleteClientHandler removes a client, or deactivates it when it has orders
func DeleteClientHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		soft, err := clients.Delete(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Client", soft)
	}
}

// ListAddressesHandler lists a client's addresses
func ListAddressesHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := pathID(c, "id")
		if !ok {
			return
		}
		q := newQuery(c)
		filter := service.AddressFilter{AddressID: q.ID("address_id"), IsPrimary: q.Bool("is_primary")}
		if q.err != nil {
			respondError(c, q.err)
			return
		}
		addrs, err := clients.ListAddresses(c.Request.Context(), clientID, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, addrs)
	}
}

// CreateAddressHandler adds an address to a client
func CreateAddressHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req AddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		addr, err := clients.CreateAddress(c.Request.Context(), clientID, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, addr)
	}
}

// UpdateAddressHandler edits one address of a client
func UpdateAddressHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := pathID(c, "id")
		if !ok {
			return
		}
		addressID, ok := pathID(c, "address_id")
		if !ok {
			return
		}
		var req UpdateAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		addr, err := clients.UpdateAddress(c.Request.Context(), clientID, addressID, service.UpdateAddressInput{
			Street:       req.Street,
			Number:       req.Number,
			Complement:   req.Complement,
			Neighborhood: req.Neighborhood,
			City:         req.City,
			State:        req.State,
			ZipCode:      req.ZipCode,
			IsPrimary:    req.IsPrimary,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

// DeleteAddressHandler removes a secondary address
func DeleteAddressHandler(clients *service.ClientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := pathID(c, "id")
		if !ok {
			return
		}
		addressID, ok := pathID(c, "address_id")
		if !ok {
			return
		}
		if err := clients.DeleteAddress(c.Request.Context(), clientID, addressID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully"})
	}
}
