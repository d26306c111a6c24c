package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/templates"
)

type templatesMode int

const (
	templatesModeList templatesMode = iota
	templatesModeForm
	templatesModeConfirmDelete
)

// template form field indices
const (
	templateFieldName = iota
	templateFieldDescription
	templateFieldColor
	templateFieldFont
	templateFieldFooter
)

// TemplatesModel lists templates and edits the selected one
type TemplatesModel struct {
	app       *app.App
	mode      templatesMode
	templates []domain.Template
	activeID  string
	cursor    int
	err       error
	statusMsg string

	form    *form
	editing *domain.Template // nil when creating
}

type templatesChangedMsg struct {
	status string
	err    error
}

// NewTemplatesModel creates a new templates screen
func NewTemplatesModel(a *app.App) tea.Model {
	m := &TemplatesModel{app: a}
	m.reload()
	return m
}

// IsCapturingInput returns true when the form or delete confirmation is active
func (m *TemplatesModel) IsCapturingInput() bool {
	return m.mode != templatesModeList
}

func (m *TemplatesModel) Init() tea.Cmd {
	return nil
}

func (m *TemplatesModel) reload() {
	m.templates = m.app.Templates.List()
	if active, err := m.app.Templates.GetActive(); err == nil {
		m.activeID = active.ID
	}
	if m.cursor >= len(m.templates) {
		m.cursor = max(len(m.templates)-1, 0)
	}
}

func (m *TemplatesModel) current() *domain.Template {
	if len(m.templates) == 0 {
		return nil
	}
	return &m.templates[m.cursor]
}

func (m *TemplatesModel) run(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return templatesChangedMsg{err: err}
		}
		return templatesChangedMsg{status: status}
	}
}

func (m *TemplatesModel) toggle(name string, get func(domain.TemplateSettings) bool, set func(*templates.SettingsPatch, *bool)) tea.Cmd {
	t := m.current()
	if t == nil {
		return nil
	}
	id := t.ID
	v := !get(t.Settings)
	var patch templates.SettingsPatch
	set(&patch, &v)

	state := "hidden"
	if v {
		state = "shown"
	}
	return m.run(fmt.Sprintf("%s %s", name, state), func(ctx context.Context) error {
		_, err := m.app.Templates.UpdateSettings(ctx, id, patch)
		return err
	})
}

func (m *TemplatesModel) openForm(t *domain.Template) tea.Cmd {
	m.editing = t
	title := "New Template"
	base := m.current()
	fields := []formField{
		{label: "Name:", placeholder: "My template", limit: 60},
		{label: "Description:", limit: 200, width: 50},
		{label: "Primary color:", placeholder: "#4F46E5", limit: 7, width: 10},
		{label: "Font family:", placeholder: "Inter, sans-serif", limit: 80},
		{label: "Footer text:", placeholder: "Thank you for your business!", limit: 200, width: 50},
	}
	if t != nil {
		title = "Edit " + t.Name
		fields[templateFieldName].value = t.Name
		fields[templateFieldDescription].value = t.Description
	}
	if base != nil {
		fields[templateFieldColor].value = base.Settings.PrimaryColor
		fields[templateFieldFont].value = base.Settings.FontFamily
		fields[templateFieldFooter].value = base.Settings.FooterText
	}

	m.form = newForm(title, fields)
	m.mode = templatesModeForm
	return m.form.Focus()
}

func (m *TemplatesModel) saveForm() tea.Cmd {
	f := m.form
	editing := m.editing

	name := f.value(templateFieldName)
	description := f.value(templateFieldDescription)
	color := f.value(templateFieldColor)
	font := f.value(templateFieldFont)
	footer := f.value(templateFieldFooter)

	if _, ok := render.ParseHexColor(color); !ok {
		return func() tea.Msg {
			return templatesChangedMsg{err: fmt.Errorf("color must be #RRGGBB")}
		}
	}
	patch := templates.SettingsPatch{PrimaryColor: &color, FontFamily: &font, FooterText: &footer}

	if editing == nil {
		var settings *domain.TemplateSettings
		if base := m.current(); base != nil {
			s := base.Settings
			settings = &s
		}
		return m.run(fmt.Sprintf("Template %q created", name), func(ctx context.Context) error {
			t, err := m.app.Templates.Create(ctx, templates.NewTemplate{Name: name, Description: description, Settings: settings})
			if err != nil {
				return err
			}
			_, err = m.app.Templates.UpdateSettings(ctx, t.ID, patch)
			return err
		})
	}

	id := editing.ID
	return m.run(fmt.Sprintf("Template %q saved", name), func(ctx context.Context) error {
		if _, err := m.app.Templates.Update(ctx, id, templates.Patch{Name: &name, Description: &description}); err != nil {
			return err
		}
		_, err := m.app.Templates.UpdateSettings(ctx, id, patch)
		return err
	})
}

func (m *TemplatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.reload()
		return m, nil

	case templatesChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			if m.mode == templatesModeConfirmDelete {
				m.mode = templatesModeList
			}
			return m, nil
		}
		m.err = nil
		m.form = nil
		m.mode = templatesModeList
		m.statusMsg = msg.status
		m.reload()
		return m, nil
	}

	switch m.mode {
	case templatesModeForm:
		action, cmd := m.form.Update(msg)
		switch action {
		case formCancel:
			m.mode = templatesModeList
			m.form = nil
			m.err = nil
			return m, nil
		case formSubmit:
			return m, m.saveForm()
		}
		return m, cmd

	case templatesModeConfirmDelete:
		if msg, ok := msg.(tea.KeyMsg); ok {
			m.mode = templatesModeList
			if t := m.current(); t != nil && key.Matches(msg, DefaultKeyMap.Confirm) {
				id, name := t.ID, t.Name
				return m, m.run(fmt.Sprintf("Template %q deleted", name), func(ctx context.Context) error {
					return m.app.Templates.Delete(ctx, id)
				})
			}
		}
		return m, nil
	}

	msg2, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil
	m.statusMsg = ""

	switch {
	case key.Matches(msg2, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg2, DefaultKeyMap.Down):
		if m.cursor < len(m.templates)-1 {
			m.cursor++
		}
	case key.Matches(msg2, DefaultKeyMap.Select):
		if t := m.current(); t != nil {
			id, name := t.ID, t.Name
			return m, m.run(fmt.Sprintf("%s is now active", name), func(ctx context.Context) error {
				return m.app.Templates.SetActive(ctx, id)
			})
		}
	case key.Matches(msg2, DefaultKeyMap.New):
		return m, m.openForm(nil)
	case key.Matches(msg2, DefaultKeyMap.Edit):
		if t := m.current(); t != nil {
			return m, m.openForm(t)
		}
	case key.Matches(msg2, DefaultKeyMap.Delete):
		if t := m.current(); t != nil {
			if !t.Custom {
				m.err = templates.ErrBuiltinTemplate
				return m, nil
			}
			m.mode = templatesModeConfirmDelete
		}
	case msg2.String() == "1":
		return m, m.toggle("Logo",
			func(s domain.TemplateSettings) bool { return s.ShowLogo },
			func(p *templates.SettingsPatch, v *bool) { p.ShowLogo = v })
	case msg2.String() == "2":
		return m, m.toggle("Payment details",
			func(s domain.TemplateSettings) bool { return s.ShowPaymentDetails },
			func(p *templates.SettingsPatch, v *bool) { p.ShowPaymentDetails = v })
	case msg2.String() == "3":
		return m, m.toggle("Signature",
			func(s domain.TemplateSettings) bool { return s.ShowSignature },
			func(p *templates.SettingsPatch, v *bool) { p.ShowSignature = v })
	}

	return m, nil
}

func (m *TemplatesModel) View() string {
	if m.mode == templatesModeForm {
		return m.form.View(m.err)
	}

	var s string
	s += titleStyle.Render("Templates") + "\n\n"
	s += statusLine(m.statusMsg)
	s += errorLine(m.err)

	var list strings.Builder
	for i, t := range m.templates {
		marker := "  "
		if t.ID == m.activeID {
			marker = "* "
		}
		kind := ""
		if t.Custom {
			kind = " (custom)"
		}
		line := fmt.Sprintf("%s%-28s", marker, truncateStr(t.Name+kind, 28))
		if i == m.cursor {
			list.WriteString(selectedStyle.Render(line) + "\n")
		} else {
			list.WriteString(line + "\n")
		}
	}

	s += lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", m.viewSettings())

	if m.mode == templatesModeConfirmDelete {
		if t := m.current(); t != nil {
			s += "\n" + errStyle.Render(fmt.Sprintf("  Delete template %q? y/n", t.Name))
		}
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: use  n: new  m: modify  d: delete  1/2/3: toggle logo/payment/signature")
	return s
}

func (m *TemplatesModel) viewSettings() string {
	t := m.current()
	if t == nil {
		return ""
	}

	accent := lipgloss.Color(t.Settings.PrimaryColor)
	if _, ok := render.ParseHexColor(t.Settings.PrimaryColor); !ok {
		accent = primaryColor
	}

	onOff := func(v bool) string {
		if v {
			return lipgloss.NewStyle().Foreground(successColor).Render("on")
		}
		return subtitleStyle.Render("off")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().Bold(true).Foreground(accent).Render(t.Name))
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", subtitleStyle.Render(t.Description))
	}
	fmt.Fprintf(&b, "\nColor:     %s %s\n", lipgloss.NewStyle().Foreground(accent).Render("■■■"), t.Settings.PrimaryColor)
	fmt.Fprintf(&b, "Font:      %s\n", render.FirstFamily(t.Settings.FontFamily))
	fmt.Fprintf(&b, "Logo:      %s\n", onOff(t.Settings.ShowLogo))
	fmt.Fprintf(&b, "Payment:   %s\n", onOff(t.Settings.ShowPaymentDetails))
	fmt.Fprintf(&b, "Signature: %s\n", onOff(t.Settings.ShowSignature))
	if t.Settings.FooterText != "" {
		fmt.Fprintf(&b, "Footer:    %s\n", truncateStr(t.Settings.FooterText, 40))
	}

	return boxStyle.BorderForeground(accent).Render(b.String())
}
