package domain

import (
	"strings"
	"time"
)

// Customer is reference data for invoice authoring
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	TRN       string    `json:"trn,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the customer is invalid
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "customer name is required")
	}
	return nil
}

// AsParty returns the denormalized copy stored on invoices
func (c *Customer) AsParty() Party {
	return Party{
		CustomerID: c.ID,
		Name:       c.Name,
		Address:    c.Address,
		Email:      c.Email,
		Phone:      c.Phone,
		TRN:        c.TRN,
	}
}

// Product is reference data for invoice authoring
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the product is invalid
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "product name is required")
	}
	if p.Price < 0 {
		return invalid("price", "product price cannot be negative")
	}
	return nil
}

// CompanyProfile holds the seller details copied onto new invoices.
type CompanyProfile struct {
	Name      string      `json:"name"`
	Logo      string      `json:"logo,omitempty"`
	Address   string      `json:"address"`
	Phone     string      `json:"phone"`
	Email     string      `json:"email"`
	Website   string      `json:"website"`
	TaxID     string      `json:"taxId"`
	Bank      BankDetails `json:"bankDetails"`
	Signature string      `json:"signature,omitempty"`
}

// AsSeller returns the denormalized copy stored on invoices
func (c CompanyProfile) AsSeller() Seller {
	return Seller{
		Name:      c.Name,
		Address:   c.Address,
		Email:     c.Email,
		Phone:     c.Phone,
		TRN:       c.TaxID,
		Logo:      c.Logo,
		Signature: c.Signature,
		Bank:      c.Bank,
	}
}
