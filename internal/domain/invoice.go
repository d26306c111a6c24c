package domain

import (
	"fmt"
	"strings"
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// rank orders statuses along the forward lifecycle
func (s InvoiceStatus) rank() int {
	switch s {
	case InvoiceStatusDraft:
		return 0
	case InvoiceStatusPending:
		return 1
	case InvoiceStatusPaid:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status
func (s InvoiceStatus) Valid() bool {
	return s.rank() >= 0
}

// ParseInvoiceStatus parses a status name, case-insensitively
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", invalid("status", fmt.Sprintf("unknown status %q (want draft, pending or paid)", s))
	}
	return status, nil
}

// Party is the denormalized client copy stored on an invoice.
type Party struct {
	CustomerID string `json:"id,omitempty"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TRN        string `json:"trn,omitempty"`
}

// BankDetails are the seller's payment instructions.
type BankDetails struct {
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	SwiftCode     string `json:"swiftCode,omitempty"`
	IBAN          string `json:"iban,omitempty"`
}

// IsEmpty returns true when no bank field is set
func (b BankDetails) IsEmpty() bool {
	return strings.TrimSpace(b.AccountName) == "" &&
		strings.TrimSpace(b.AccountNumber) == "" &&
		strings.TrimSpace(b.BankName) == "" &&
		strings.TrimSpace(b.SwiftCode) == "" &&
		strings.TrimSpace(b.IBAN) == ""
}

// Seller is the denormalized issuer copy stored on an invoice.
type Seller struct {
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	TRN       string      `json:"trn,omitempty"`
	Logo      string      `json:"logo,omitempty"`
	Signature string      `json:"signature,omitempty"`
	Bank      BankDetails `json:"bankDetails"`
}

// Totals are always derived from the invoice items, never edited directly.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"vatAmount"`
	TaxRatePercent float64 `json:"vatRate"`
	Total          float64 `json:"total"`
}

type LineItem struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"price"`
	Unit        string  `json:"unit"`
	ProductID   string  `json:"productId,omitempty"`
}

// Validate rejects items that must never reach the totals calculator
func (li LineItem) Validate() error {
	if strings.TrimSpace(li.Description) == "" {
		return invalid("description", "item description is required")
	}
	if li.Quantity <= 0 {
		return invalid("quantity", "item quantity must be positive")
	}
	if li.UnitPrice <= 0 {
		return invalid("price", "item price must be positive")
	}
	return nil
}

type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number"`
	Client    Party         `json:"client"`
	Seller    Seller        `json:"seller"`
	IssueDate time.Time     `json:"invoiceDate"`
	DueDate   *time.Time    `json:"dueDate,omitempty"`
	Status    InvoiceStatus `json:"status"`
	Items     []LineItem    `json:"items"`
	Notes     string        `json:"notes,omitempty"`
	Totals
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewInvoice creates a new draft invoice
func NewInvoice(id, number string, client Party, seller Seller, issueDate time.Time) *Invoice {
	now := time.Now()
	return &Invoice{
		ID:        id,
		Number:    number,
		Client:    client,
		Seller:    seller,
		IssueDate: issueDate,
		Status:    InvoiceStatusDraft,
		Items:     make([]LineItem, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NextItemID returns max(item id)+1, or 1 for an empty invoice
func (i *Invoice) NextItemID() int {
	next := 1
	for _, item := range i.Items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	return next
}

// Transition moves the invoice to status. Backwards moves require force.
func (i *Invoice) Transition(to InvoiceStatus, force bool) error {
	if !to.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", to))
	}
	if to.rank() < i.Status.rank() && !force {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, to)
	}
	i.Status = to
	i.UpdatedAt = time.Now()
	return nil
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if strings.TrimSpace(i.Number) == "" {
		return invalid("number", "invoice number is required")
	}
	if strings.TrimSpace(i.Client.Name) == "" {
		return invalid("client.name", "client name is required")
	}
	if i.IssueDate.IsZero() {
		return invalid("invoiceDate", "invoice date is required")
	}
	if i.DueDate != nil && i.DueDate.Before(i.IssueDate) {
		return invalid("dueDate", "due date must not be before invoice date")
	}
	if !i.Status.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", i.Status))
	}
	if len(i.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	seen := make(map[int]bool, len(i.Items))
	for _, item := range i.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", item.ID, err)
		}
		if seen[item.ID] {
			return invalid("items", fmt.Sprintf("duplicate item id %d", item.ID))
		}
		seen[item.ID] = true
	}
	return nil
}
