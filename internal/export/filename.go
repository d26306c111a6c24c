package export

import (
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
)

// Filename returns invoice-<number>-<client>-<YYYY-MM-DD>.pdf for the export day
func Filename(inv *domain.Invoice, day time.Time) string {
	number := sanitize(inv.Number, func(r rune) bool {
		return isAlnum(r) || r == '-' || r == '_'
	}, "")
	if number == "" {
		number = "unknown"
	}

	client := sanitize(strings.ToLower(inv.Client.Name), isAlnum, "-")
	client = strings.Trim(client, "-")
	if client == "" {
		client = "customer"
	}

	return "invoice-" + number + "-" + client + "-" + day.Format("2006-01-02") + ".pdf"
}

// sanitize keeps runes accepted by keep and replaces the rest with repl
func sanitize(s string, keep func(rune) bool, repl string) string {
	var b strings.Builder
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(repl)
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
