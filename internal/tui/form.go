package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formField describes one labelled text input
type formField struct {
	label       string
	placeholder string
	value       string
	limit       int
	width       int
}

// form is a vertical list of text inputs with tab navigation.
// Screens own the submit and cancel semantics.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
}

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

func newForm(title string, fields []formField) *form {
	f := &form{title: title}
	for _, field := range fields {
		ti := textinput.New()
		ti.Placeholder = field.placeholder
		ti.CharLimit = field.limit
		if ti.CharLimit == 0 {
			ti.CharLimit = 128
		}
		ti.Width = field.width
		if ti.Width == 0 {
			ti.Width = 40
		}
		ti.SetValue(field.value)
		f.labels = append(f.labels, field.label)
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// Focus focuses the first field
func (f *form) Focus() tea.Cmd {
	f.focus = 0
	return f.inputs[0].Focus()
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Update handles navigation and returns formSubmit on ctrl+s or enter on the
// last field, formCancel on esc.
func (f *form) Update(msg tea.Msg) (formAction, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return formCancel, nil
		case "tab", "down":
			return formNone, f.move(1)
		case "shift+tab", "up":
			return formNone, f.move(-1)
		case "ctrl+s":
			return formSubmit, nil
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return formSubmit, nil
			}
			return formNone, f.move(1)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formNone, cmd
}

func (f *form) View(err error) string {
	var s string
	s += titleStyle.Render(f.title) + "\n\n"

	for i, label := range f.labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == f.focus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n", indicator, labelStyle.Render(label), f.inputs[i].View())
	}
	s += "\n"

	s += errorLine(err)
	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}
