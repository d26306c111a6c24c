package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldOutputDir = iota
	settingsFieldPrefix
	settingsFieldDueDays
	settingsFieldTaxRate
)

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app       *app.App
	mode      settingsMode
	form      *form
	err       error
	statusMsg string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) initForm() tea.Cmd {
	cfg := m.app.Config.Invoice
	m.form = newForm("Edit Settings", []formField{
		{label: "Output Directory:", placeholder: "/path/to/invoices", value: cfg.OutputDir, limit: 256, width: 60},
		{label: "Number Prefix:", placeholder: "INV", value: cfg.NumberPrefix, limit: 20, width: 20},
		{label: "Default Due Days:", placeholder: "30", value: strconv.Itoa(cfg.DefaultDueDays), limit: 5, width: 10},
		{label: "Tax Rate (%):", placeholder: "5", value: strconv.FormatFloat(cfg.TaxRate*100, 'f', -1, 64), limit: 10, width: 10},
	})
	return m.form.Focus()
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	f := m.form
	return func() tea.Msg {
		outputDir := f.value(settingsFieldOutputDir)
		prefix := f.value(settingsFieldPrefix)

		if outputDir == "" {
			return settingsSavedMsg{err: fmt.Errorf("output directory is required")}
		}
		if prefix == "" {
			return settingsSavedMsg{err: fmt.Errorf("invoice prefix is required")}
		}

		dueDays, err := strconv.Atoi(f.value(settingsFieldDueDays))
		if err != nil || dueDays < 0 {
			return settingsSavedMsg{err: fmt.Errorf("due days must be a non-negative number")}
		}

		taxRate, err := strconv.ParseFloat(f.value(settingsFieldTaxRate), 64)
		if err != nil || taxRate < 0 || taxRate > 100 {
			return settingsSavedMsg{err: fmt.Errorf("tax rate must be between 0 and 100")}
		}

		// Tax rate is stored as a fraction
		cfg := *m.app.Config
		cfg.Invoice.OutputDir = outputDir
		cfg.Invoice.NumberPrefix = prefix
		cfg.Invoice.DefaultDueDays = dueDays
		cfg.Invoice.TaxRate = taxRate / 100
		if err := cfg.Validate(); err != nil {
			return settingsSavedMsg{err: err}
		}

		*m.app.Config = cfg
		if err := m.app.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}

		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		m.err = nil
		if msg.String() == "enter" {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			return m, m.initForm()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(settingsSavedMsg); ok {
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.form = nil
		m.statusMsg = "Settings saved. Numbering and tax changes apply after restart."
		return m, nil
	}

	action, cmd := m.form.Update(msg)
	switch action {
	case formCancel:
		m.mode = settingsModeView
		m.form = nil
		m.err = nil
		return m, nil
	case formSubmit:
		return m, m.saveSettings()
	}
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.form.View(m.err)
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"
	s += statusLine(m.statusMsg)

	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	s += subtitleStyle.Render("  Invoice Settings") + "\n\n"
	s += row("Output Directory:", cfg.Invoice.OutputDir)
	s += row("Number Prefix:", cfg.Invoice.NumberPrefix)
	s += row("Default Due Days:", strconv.Itoa(cfg.Invoice.DefaultDueDays))
	s += row("Tax Rate:", strconv.FormatFloat(cfg.Invoice.TaxRate*100, 'f', -1, 64)+"%")

	s += "\n" + subtitleStyle.Render("  Export") + "\n\n"
	s += row("Page Size:", fmt.Sprintf("%gx%g mm", cfg.Export.PageWidthMM, cfg.Export.PageHeightMM))
	s += row("Margins:", fmt.Sprintf("%g mm top, %g mm bottom", cfg.Export.MarginTopMM, cfg.Export.MarginBottomMM))
	s += row("Capture Scale:", strconv.FormatFloat(cfg.Export.Scale, 'f', -1, 64))
	s += row("Remote Images:", strconv.FormatBool(cfg.Export.CrossOriginImages))

	s += "\n" + subtitleStyle.Render("  Storage") + "\n\n"
	s += row("Driver:", cfg.Store.Driver)

	s += "\n" + helpStyle.Render("  enter: edit invoice settings")

	return s
}
