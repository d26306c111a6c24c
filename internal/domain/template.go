package domain

// TemplateSettings are the style flags a template applies to rendering.
type TemplateSettings struct {
	PrimaryColor       string `json:"primaryColor"`
	FontFamily         string `json:"fontFamily"`
	ShowLogo           bool   `json:"showLogo"`
	ShowPaymentDetails bool   `json:"showPaymentDetails"`
	ShowSignature      bool   `json:"showSignature"`
	FooterText         string `json:"footerText"`
}

type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	IsDefault   bool             `json:"isDefault"`
	Custom      bool             `json:"custom"`
	Settings    TemplateSettings `json:"settings"`
}
