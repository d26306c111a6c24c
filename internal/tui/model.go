package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenInvoices
	ScreenExpenses
	ScreenTemplates
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "Overview"
	case ScreenInvoices:
		return "Invoices"
	case ScreenExpenses:
		return "Expenses"
	case ScreenTemplates:
		return "Templates"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	screens map[Screen]tea.Model

	// First-run state
	checkedFirstRun bool
	hint            string

	// Error state
	err error
}

// New creates a new root model
func New(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenDashboard,
		screens: map[Screen]tea.Model{
			ScreenDashboard: NewDashboardModel(a),
		},
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkFirstRun(), m.screens[ScreenDashboard].Init())
}

// checkFirstRun checks whether the company profile has been filled in
func (m *Model) checkFirstRun() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.app.CompanyRepo.Get(context.Background())
		if err != nil {
			return firstRunCheckMsg{hasCompany: true} // assume yes on error
		}
		return firstRunCheckMsg{hasCompany: profile.Name != ""}
	}
}

func newScreen(a *app.App, screen Screen) tea.Model {
	switch screen {
	case ScreenDashboard:
		return NewDashboardModel(a)
	case ScreenInvoices:
		return NewInvoicesModel(a)
	case ScreenExpenses:
		return NewExpensesModel(a)
	case ScreenTemplates:
		return NewTemplatesModel(a)
	case ScreenSettings:
		return NewSettingsModel(a)
	}
	return nil
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	if _, ok := m.screens[screen]; !ok {
		s := newScreen(m.app, screen)
		if s == nil {
			return nil
		}
		m.screens[screen] = s
		return s.Init()
	}
	return func() tea.Msg { return RefreshDataMsg{} }
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screens[m.currentScreen].(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	m.err = nil
	return m.initScreen(screen)
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Dashboard):
				return m, m.switchTo(ScreenDashboard)
			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.switchTo(ScreenInvoices)
			case key.Matches(msg, DefaultKeyMap.Expenses):
				return m, m.switchTo(ScreenExpenses)
			case key.Matches(msg, DefaultKeyMap.Templates):
				return m, m.switchTo(ScreenTemplates)
			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}

	case firstRunCheckMsg:
		if !m.checkedFirstRun && !msg.hasCompany {
			m.hint = "No company profile yet. Set one with: invoicedesk company set --name ..."
		}
		m.checkedFirstRun = true
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	if screen, ok := m.screens[m.currentScreen]; ok {
		m.screens[m.currentScreen], cmd = screen.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("invoicedesk - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[O]verview  [I]nvoices  [E]xpenses  [T]emplates  [,] Settings  [Q]uit")

	content := "Loading..."
	if screen, ok := m.screens[m.currentScreen]; ok {
		content = screen.View()
	}

	// Error/hint display
	notice := ""
	if m.err != nil {
		notice = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	} else if m.hint != "" && m.currentScreen == ScreenDashboard {
		notice = lipgloss.NewStyle().
			Foreground(warningColor).
			Render(fmt.Sprintf("\n%s", m.hint))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, notice, divider, footer)

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
