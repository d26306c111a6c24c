package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/domain"
)

// formatMoney formats money as "$X,XXX.XX" with comma separators
func formatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	// Add commas to integer part
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := "$"
	if negative {
		prefix = "-$"
	}
	return prefix + string(result) + decPart
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02, 2006")
}

// statusBadge renders an invoice status with color
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusDraft:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("DRAFT")
	case domain.InvoiceStatusPending:
		return lipgloss.NewStyle().Foreground(warningColor).Render("PENDING")
	case domain.InvoiceStatusPaid:
		return lipgloss.NewStyle().Foreground(successColor).Render("PAID")
	default:
		return string(status)
	}
}

// nextStatus returns the status after s in the forward lifecycle, or s when paid
func nextStatus(s domain.InvoiceStatus) domain.InvoiceStatus {
	switch s {
	case domain.InvoiceStatusDraft:
		return domain.InvoiceStatusPending
	case domain.InvoiceStatusPending:
		return domain.InvoiceStatusPaid
	default:
		return s
	}
}

func errorLine(err error) string {
	if err == nil {
		return ""
	}
	return errStyle.Render(fmt.Sprintf("  Error: %v", err)) + "\n\n"
}

func statusLine(msg string) string {
	if msg == "" {
		return ""
	}
	return statusStyle.Render("  "+msg) + "\n\n"
}
