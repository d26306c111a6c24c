package domain

import (
	"strings"
	"time"
)

// ExpenseCategories is the predefined category vocabulary. Free text is also accepted.
var ExpenseCategories = []string{
	"Office Supplies",
	"Rent",
	"Utilities",
	"Salaries",
	"Marketing",
	"Travel",
	"Software",
	"Equipment",
	"Maintenance",
	"Insurance",
	"Legal & Professional",
	"Meals & Entertainment",
	"Taxes",
	"Miscellaneous",
}

type Expense struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Notes         string    `json:"notes,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Receipt       string    `json:"receipt,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsPredefinedCategory reports whether category is in ExpenseCategories
func IsPredefinedCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Validate returns an error if the expense is invalid
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return invalid("date", "date is required")
	}
	if e.Amount <= 0 {
		return invalid("amount", "amount must be a positive number")
	}
	if strings.TrimSpace(e.Category) == "" {
		return invalid("category", "category is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return invalid("description", "description is required")
	}
	return nil
}
