package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

type expenseMode int

const (
	expenseModeList          expenseMode = iota
	expenseModeForm                      // new or edit form
	expenseModeSearch                    // typing a search term
	expenseModeConfirmDelete             // y/n confirmation before delete
)

// expense form field indices
const (
	expenseFieldDescription = iota
	expenseFieldAmount
	expenseFieldCategory
	expenseFieldDate
	expenseFieldMethod
	expenseFieldNotes
)

// ExpensesModel displays a scrollable, filterable list of expenses
type ExpensesModel struct {
	app        *app.App
	expenses   []*domain.Expense
	total      float64
	cursor     int
	offset     int
	maxVisible int
	loading    bool
	err        error
	statusMsg  string

	// Filters
	categories  []string // "" first, meaning all
	categoryIdx int
	search      string
	searchInput textinput.Model

	// Form state
	mode    expenseMode
	form    *form
	editing *domain.Expense // nil for a new expense
}

type expensesDataMsg struct {
	expenses   []*domain.Expense
	total      float64
	categories []string
	err        error
}

type expenseSavedMsg struct {
	err error
}

type expenseDeletedMsg struct {
	err error
}

// IsCapturingInput returns true when the form, search or delete confirmation is active
func (m *ExpensesModel) IsCapturingInput() bool {
	return m.mode != expenseModeList
}

// NewExpensesModel creates a new expenses screen model
func NewExpensesModel(a *app.App) tea.Model {
	return &ExpensesModel{
		app:        a,
		maxVisible: 15,
		loading:    true,
		categories: []string{""},
	}
}

func (m *ExpensesModel) Init() tea.Cmd {
	return m.loadExpenses()
}

func (m *ExpensesModel) filter() service.ExpenseFilter {
	return service.ExpenseFilter{
		Search:   m.search,
		Category: m.categories[m.categoryIdx],
	}
}

func (m *ExpensesModel) loadExpenses() tea.Cmd {
	filter := m.filter()
	return func() tea.Msg {
		ctx := context.Background()

		expenses, err := m.app.ExpenseService.List(ctx, filter)
		if err != nil {
			return expensesDataMsg{err: err}
		}
		total, err := m.app.ExpenseService.Total(ctx, filter)
		if err != nil {
			return expensesDataMsg{err: err}
		}
		categories, err := m.app.ExpenseService.Categories(ctx)
		if err != nil {
			return expensesDataMsg{err: err}
		}

		return expensesDataMsg{
			expenses:   expenses,
			total:      total,
			categories: append([]string{""}, categories...),
		}
	}
}

func (m *ExpensesModel) openForm(e *domain.Expense) tea.Cmd {
	m.editing = e
	title := "New Expense"
	values := []string{"", "", domain.ExpenseCategories[0], time.Now().Format("2006-01-02"), "", ""}
	if e != nil {
		title = "Edit Expense"
		values = []string{
			e.Description,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category,
			e.Date.Format("2006-01-02"),
			e.PaymentMethod,
			e.Notes,
		}
	}

	m.form = newForm(title, []formField{
		{label: "Description:", placeholder: "Printer paper", value: values[expenseFieldDescription], limit: 200, width: 50},
		{label: "Amount:", placeholder: "0.00", value: values[expenseFieldAmount], limit: 16, width: 16},
		{label: "Category:", placeholder: "Office Supplies", value: values[expenseFieldCategory], limit: 64},
		{label: "Date (YYYY-MM-DD):", placeholder: "2006-01-02", value: values[expenseFieldDate], limit: 10, width: 12},
		{label: "Payment method:", placeholder: "Card", value: values[expenseFieldMethod], limit: 64},
		{label: "Notes:", value: values[expenseFieldNotes], limit: 500, width: 50},
	})
	m.mode = expenseModeForm
	return m.form.Focus()
}

func (m *ExpensesModel) saveExpense() tea.Cmd {
	f := m.form
	editing := m.editing
	return func() tea.Msg {
		amount, err := strconv.ParseFloat(f.value(expenseFieldAmount), 64)
		if err != nil {
			return expenseSavedMsg{err: fmt.Errorf("amount must be a number")}
		}
		date, err := time.ParseInLocation("2006-01-02", f.value(expenseFieldDate), time.Local)
		if err != nil {
			return expenseSavedMsg{err: fmt.Errorf("date must be YYYY-MM-DD")}
		}

		in := service.ExpenseInput{
			Description:   f.value(expenseFieldDescription),
			Amount:        amount,
			Category:      f.value(expenseFieldCategory),
			Date:          date,
			PaymentMethod: f.value(expenseFieldMethod),
			Notes:         f.value(expenseFieldNotes),
		}

		ctx := context.Background()
		if editing == nil {
			_, err = m.app.ExpenseService.Create(ctx, in)
		} else {
			in.Receipt = editing.Receipt
			_, err = m.app.ExpenseService.Update(ctx, editing.ID, in)
		}
		return expenseSavedMsg{err: err}
	}
}

func (m *ExpensesModel) deleteExpense(id string) tea.Cmd {
	return func() tea.Msg {
		return expenseDeletedMsg{err: m.app.ExpenseService.Delete(context.Background(), id)}
	}
}

func (m *ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case expenseModeForm:
		return m.updateForm(msg)
	case expenseModeSearch:
		return m.updateSearch(msg)
	case expenseModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadExpenses()

	case expensesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.expenses = msg.expenses
			m.total = msg.total
			m.setCategories(msg.categories)
			if m.cursor >= len(m.expenses) {
				m.cursor = max(len(m.expenses)-1, 0)
				m.offset = 0
			}
		}
		return m, nil

	case expenseDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Expense deleted"
		m.loading = true
		return m, m.loadExpenses()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.expenses)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.maxVisible {
					m.offset = m.cursor - m.maxVisible + 1
				}
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openForm(nil)
		case key.Matches(msg, DefaultKeyMap.Select):
			if len(m.expenses) > 0 {
				return m, m.openForm(m.expenses[m.cursor])
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if len(m.expenses) > 0 {
				m.mode = expenseModeConfirmDelete
			}
		case key.Matches(msg, DefaultKeyMap.Filter):
			m.categoryIdx = (m.categoryIdx + 1) % len(m.categories)
			m.cursor, m.offset = 0, 0
			m.loading = true
			return m, m.loadExpenses()
		case key.Matches(msg, DefaultKeyMap.Search):
			m.searchInput = textinput.New()
			m.searchInput.Placeholder = "description or category"
			m.searchInput.Width = 40
			m.searchInput.SetValue(m.search)
			m.mode = expenseModeSearch
			return m, m.searchInput.Focus()
		}
	}

	return m, nil
}

// setCategories replaces the filter choices, keeping the current selection
func (m *ExpensesModel) setCategories(categories []string) {
	current := m.categories[m.categoryIdx]
	m.categories = categories
	m.categoryIdx = 0
	for i, c := range categories {
		if c == current {
			m.categoryIdx = i
			return
		}
	}
}

func (m *ExpensesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(expenseSavedMsg); ok {
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = expenseModeList
		m.statusMsg = "Expense saved"
		m.form = nil
		m.loading = true
		return m, m.loadExpenses()
	}

	action, cmd := m.form.Update(msg)
	switch action {
	case formCancel:
		m.mode = expenseModeList
		m.form = nil
		m.err = nil
		return m, nil
	case formSubmit:
		return m, m.saveExpense()
	}
	return m, cmd
}

func (m *ExpensesModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.mode = expenseModeList
			return m, nil
		case "enter":
			m.search = m.searchInput.Value()
			m.mode = expenseModeList
			m.cursor, m.offset = 0, 0
			m.loading = true
			return m, m.loadExpenses()
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *ExpensesModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.mode = expenseModeList
		if key.Matches(msg, DefaultKeyMap.Confirm) {
			return m, m.deleteExpense(m.expenses[m.cursor].ID)
		}
	}
	return m, nil
}

func (m *ExpensesModel) View() string {
	if m.mode == expenseModeForm {
		return m.form.View(m.err)
	}
	if m.loading {
		return "Loading expenses..."
	}

	var s string
	s += titleStyle.Render("Expenses") + "\n"

	category := m.categories[m.categoryIdx]
	if category == "" {
		category = "all categories"
	}
	filterDesc := fmt.Sprintf("  %s", category)
	if m.search != "" {
		filterDesc += fmt.Sprintf(", matching %q", m.search)
	}
	s += subtitleStyle.Render(filterDesc) + "\n\n"

	s += statusLine(m.statusMsg)
	s += errorLine(m.err)

	if m.mode == expenseModeSearch {
		s += "  Search: " + m.searchInput.View() + "\n\n"
	}

	if len(m.expenses) == 0 {
		s += subtitleStyle.Render("  No expenses found. Press 'n' to record one.") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-12s  %-22s  %-30s  %12s",
			"Date", "Category", "Description", "Amount",
		)) + "\n"

		end := min(m.offset+m.maxVisible, len(m.expenses))
		if m.offset > 0 {
			s += subtitleStyle.Render(fmt.Sprintf("  ↑ %d more", m.offset)) + "\n"
		}
		for i := m.offset; i < end; i++ {
			e := m.expenses[i]
			line := fmt.Sprintf("  %-12s  %-22s  %-30s  %12s",
				e.Date.Format("Jan 02, 2006"),
				truncateStr(e.Category, 22),
				truncateStr(e.Description, 30),
				formatMoney(e.Amount),
			)
			if i == m.cursor {
				s += selectedStyle.Render(line) + "\n"
			} else {
				s += line + "\n"
			}
		}
		if end < len(m.expenses) {
			s += subtitleStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.expenses)-end)) + "\n"
		}

		s += "\n" + titleStyle.Render(fmt.Sprintf("  %d expense(s)  Total: %s", len(m.expenses), formatMoney(m.total))) + "\n"
	}

	if m.mode == expenseModeConfirmDelete {
		e := m.expenses[m.cursor]
		s += "\n" + errStyle.Render(fmt.Sprintf("  Delete %q (%s)? y/n", e.Description, formatMoney(e.Amount)))
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: edit  n: new  d: delete  f: category  /: search")
	return s
}
