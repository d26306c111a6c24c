package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// firstRunCheckMsg reports whether a company profile has been set up
type firstRunCheckMsg struct {
	hasCompany bool
}
