package templates

import "github.com/andy/invoicedesk/internal/domain"

// DefaultTemplateID is the built-in template used when nothing else resolves.
const DefaultTemplateID = "classic"

// Builtins returns fresh copies of the seeded templates
func Builtins() []domain.Template {
	return []domain.Template{
		{
			ID:          "classic",
			Name:        "Classic",
			Description: "Traditional invoice layout with a clean design",
			IsDefault:   true,
			Settings: domain.TemplateSettings{
				PrimaryColor:       "#4F46E5",
				FontFamily:         "Inter, sans-serif",
				ShowLogo:           true,
				ShowPaymentDetails: true,
				ShowSignature:      false,
				FooterText:         "Thank you for your business",
			},
		},
		{
			ID:          "modern",
			Name:        "Modern",
			Description: "Contemporary design with bold accents",
			Settings: domain.TemplateSettings{
				PrimaryColor:       "#0EA5E9",
				FontFamily:         "Poppins, sans-serif",
				ShowLogo:           true,
				ShowPaymentDetails: true,
				ShowSignature:      true,
				FooterText:         "Payment due within 30 days",
			},
		},
		{
			ID:          "professional",
			Name:        "Professional",
			Description: "Formal layout suited to corporate clients",
			Settings: domain.TemplateSettings{
				PrimaryColor:       "#374151",
				FontFamily:         "Roboto, sans-serif",
				ShowLogo:           true,
				ShowPaymentDetails: true,
				ShowSignature:      true,
				FooterText:         "Terms & Conditions Apply",
			},
		},
	}
}

func isBuiltin(id string) bool {
	for _, t := range Builtins() {
		if t.ID == id {
			return true
		}
	}
	return false
}
