package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/export"
	"github.com/andy/invoicedesk/internal/service"
)

type invoiceViewMode int

const (
	invoiceViewList          invoiceViewMode = iota
	invoiceViewDetail                        // Viewing a single invoice
	invoiceViewNew                           // New invoice form
	invoiceViewAddItem                       // Add item form on the selected invoice
	invoiceViewEdit                          // Header form on the selected invoice
	invoiceViewConfirmDelete                 // y/n confirmation before delete
)

// new invoice form field indices
const (
	newInvoiceClientName = iota
	newInvoiceClientEmail
	newInvoiceClientAddress
	newInvoiceDescription
	newInvoiceQuantity
	newInvoicePrice
	newInvoiceUnit
)

// edit form field indices
const (
	editFieldNumber = iota
	editFieldClientName
	editFieldClientEmail
	editFieldClientAddress
	editFieldDate
	editFieldDue
)

// item form field indices
const (
	itemFieldDescription = iota
	itemFieldQuantity
	itemFieldPrice
	itemFieldUnit
)

var statusFilters = []domain.InvoiceStatus{"", domain.InvoiceStatusDraft, domain.InvoiceStatusPending, domain.InvoiceStatusPaid}

// InvoicesModel displays invoices in list and detail views
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	cursor    int
	selected  *domain.Invoice
	filterIdx int
	loading   bool
	err       error
	statusMsg string

	form *form

	exporting bool
	spinner   spinner.Model
}

// IsCapturingInput returns true when a form or the delete confirmation is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.inForm() || m.mode == invoiceViewConfirmDelete
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

// invoiceChangedMsg carries an invoice after a create or edit
type invoiceChangedMsg struct {
	invoice *domain.Invoice
	status  string
	err     error
}

type invoiceDeletedMsg struct {
	number string
	err    error
}

type exportDoneMsg struct {
	path  string
	pages int
	err   error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:     a,
		mode:    invoiceViewList,
		loading: true,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	var filter service.InvoiceFilter
	if s := statusFilters[m.filterIdx]; s != "" {
		filter.Status = &s
	}
	return func() tea.Msg {
		invoices, err := m.app.InvoiceService.List(context.Background(), filter)
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) openNewForm() tea.Cmd {
	m.form = newForm("New Invoice", []formField{
		{label: "Client name:", placeholder: "Acme Ltd", limit: 120},
		{label: "Client email:", placeholder: "billing@acme.test", limit: 120},
		{label: "Client address:", limit: 200, width: 50},
		{label: "Item description:", placeholder: "Consulting", limit: 200, width: 50},
		{label: "Quantity:", value: "1", limit: 12, width: 12},
		{label: "Unit price:", placeholder: "0.00", limit: 16, width: 16},
		{label: "Unit:", placeholder: "hour", limit: 24, width: 12},
	})
	m.mode = invoiceViewNew
	return m.form.Focus()
}

func (m *InvoicesModel) inForm() bool {
	return m.mode == invoiceViewNew || m.mode == invoiceViewAddItem || m.mode == invoiceViewEdit
}

func (m *InvoicesModel) openEditForm() tea.Cmd {
	inv := m.selected
	due := ""
	if inv.DueDate != nil {
		due = inv.DueDate.Format("2006-01-02")
	}
	m.form = newForm(fmt.Sprintf("Edit %s", inv.Number), []formField{
		{label: "Number:", value: inv.Number, limit: 40, width: 20},
		{label: "Client name:", value: inv.Client.Name, limit: 120},
		{label: "Client email:", value: inv.Client.Email, limit: 120},
		{label: "Client address:", value: inv.Client.Address, limit: 200, width: 50},
		{label: "Date (YYYY-MM-DD):", value: inv.IssueDate.Format("2006-01-02"), limit: 10, width: 12},
		{label: "Due (YYYY-MM-DD, empty for none):", value: due, limit: 10, width: 12},
	})
	m.mode = invoiceViewEdit
	return m.form.Focus()
}

// invoiceUpdateFromForm reads the edit form. Client fields the form does not
// show are kept from inv.
func invoiceUpdateFromForm(f *form, inv *domain.Invoice) (service.InvoiceUpdate, error) {
	number := f.value(editFieldNumber)
	update := service.InvoiceUpdate{Number: &number}

	client := inv.Client
	client.Name = f.value(editFieldClientName)
	client.Email = f.value(editFieldClientEmail)
	client.Address = f.value(editFieldClientAddress)
	if client != inv.Client {
		update.Client = &client
	}

	date, err := time.ParseInLocation("2006-01-02", f.value(editFieldDate), time.Local)
	if err != nil {
		return update, fmt.Errorf("date must be YYYY-MM-DD")
	}
	update.IssueDate = &date

	if v := f.value(editFieldDue); v == "" {
		update.ClearDueDate = true
	} else {
		due, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return update, fmt.Errorf("due date must be YYYY-MM-DD")
		}
		update.DueDate = &due
	}
	return update, nil
}

func (m *InvoicesModel) editInvoice() tea.Cmd {
	f := m.form
	inv := m.selected
	return func() tea.Msg {
		update, err := invoiceUpdateFromForm(f, inv)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		updated, err := m.app.InvoiceService.Update(context.Background(), inv.ID, update)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		return invoiceChangedMsg{invoice: updated, status: "Invoice updated"}
	}
}

func (m *InvoicesModel) openItemForm() tea.Cmd {
	m.form = newForm(fmt.Sprintf("Add Item to %s", m.selected.Number), []formField{
		{label: "Description:", limit: 200, width: 50},
		{label: "Quantity:", value: "1", limit: 12, width: 12},
		{label: "Unit price:", placeholder: "0.00", limit: 16, width: 16},
		{label: "Unit:", placeholder: "hour", limit: 24, width: 12},
	})
	m.mode = invoiceViewAddItem
	return m.form.Focus()
}

// itemFromForm reads an item starting at field index first
func itemFromForm(f *form, first int) (service.ItemInput, error) {
	qty, err := strconv.ParseFloat(f.value(first+itemFieldQuantity), 64)
	if err != nil {
		return service.ItemInput{}, fmt.Errorf("quantity must be a number")
	}
	price, err := strconv.ParseFloat(f.value(first+itemFieldPrice), 64)
	if err != nil {
		return service.ItemInput{}, fmt.Errorf("unit price must be a number")
	}
	return service.ItemInput{
		Description: f.value(first + itemFieldDescription),
		Quantity:    qty,
		UnitPrice:   price,
		Unit:        f.value(first + itemFieldUnit),
	}, nil
}

func (m *InvoicesModel) createInvoice() tea.Cmd {
	f := m.form
	return func() tea.Msg {
		item, err := itemFromForm(f, newInvoiceDescription)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		in := service.CreateInvoiceInput{
			Client: domain.Party{
				Name:    f.value(newInvoiceClientName),
				Email:   f.value(newInvoiceClientEmail),
				Address: f.value(newInvoiceClientAddress),
			},
			Items: []service.ItemInput{item},
		}
		inv, err := m.app.InvoiceService.Create(context.Background(), in)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		return invoiceChangedMsg{invoice: inv, status: fmt.Sprintf("Invoice %s created", inv.Number)}
	}
}

func (m *InvoicesModel) addItem() tea.Cmd {
	f := m.form
	id := m.selected.ID
	return func() tea.Msg {
		item, err := itemFromForm(f, 0)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		inv, err := m.app.InvoiceService.AddItem(context.Background(), id, item)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		return invoiceChangedMsg{invoice: inv, status: "Item added"}
	}
}

func (m *InvoicesModel) advanceStatus() tea.Cmd {
	inv := m.selected
	next := nextStatus(inv.Status)
	return func() tea.Msg {
		if next == inv.Status {
			return invoiceChangedMsg{invoice: inv, status: "Invoice is already paid"}
		}
		updated, err := m.app.InvoiceService.SetStatus(context.Background(), inv.ID, next, false)
		if err != nil {
			return invoiceChangedMsg{err: err}
		}
		return invoiceChangedMsg{invoice: updated, status: fmt.Sprintf("Marked as %s", next)}
	}
}

func (m *InvoicesModel) deleteInvoice() tea.Cmd {
	inv := m.selected
	return func() tea.Msg {
		err := m.app.InvoiceService.Delete(context.Background(), inv.ID)
		return invoiceDeletedMsg{number: inv.Number, err: err}
	}
}

func (m *InvoicesModel) exportInvoice() tea.Cmd {
	inv := m.selected
	dir := m.app.Config.Invoice.OutputDir
	return func() tea.Msg {
		res, err := m.app.Exporter.Export(context.Background(), inv)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.SaveFile(dir, res)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path, pages: res.Pages}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = max(len(m.invoices)-1, 0)
		}
		return m, nil

	case invoiceChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.form = nil
		m.selected = msg.invoice
		m.statusMsg = msg.status
		m.mode = invoiceViewDetail
		return m, m.loadInvoices()

	case invoiceDeletedMsg:
		m.mode = invoiceViewList
		m.selected = nil
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Invoice %s deleted", msg.number)
		m.loading = true
		return m, m.loadInvoices()

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.err = fmt.Errorf("export failed: %w", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Exported %d page(s) -> %s", msg.pages, msg.path)
		return m, nil

	case spinner.TickMsg:
		if !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading || m.exporting {
			return m, nil
		}

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewConfirmDelete:
			m.mode = invoiceViewDetail
			if key.Matches(msg, DefaultKeyMap.Confirm) {
				return m, m.deleteInvoice()
			}
			return m, nil
		}
	}

	if m.inForm() {
		return m.updateForm(msg)
	}

	return m, nil
}

func (m *InvoicesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	action, cmd := m.form.Update(msg)
	switch action {
	case formCancel:
		m.err = nil
		m.form = nil
		if m.mode == invoiceViewNew {
			m.mode = invoiceViewList
		} else {
			m.mode = invoiceViewDetail
		}
		return m, nil
	case formSubmit:
		switch m.mode {
		case invoiceViewAddItem:
			return m, m.addItem()
		case invoiceViewEdit:
			return m, m.editInvoice()
		}
		return m, m.createInvoice()
	}
	return m, cmd
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.invoices) > 0 {
			m.selected = m.invoices[m.cursor]
			m.statusMsg = ""
			m.mode = invoiceViewDetail
		}
	case key.Matches(msg, DefaultKeyMap.Filter):
		m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
		m.cursor = 0
		m.loading = true
		return m, m.loadInvoices()
	case key.Matches(msg, DefaultKeyMap.New):
		m.statusMsg = ""
		return m, m.openNewForm()
	}

	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.selected = nil
		m.statusMsg = ""
	case key.Matches(msg, DefaultKeyMap.Export):
		m.exporting = true
		m.statusMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.exportInvoice())
	case key.Matches(msg, DefaultKeyMap.Advance):
		return m, m.advanceStatus()
	case key.Matches(msg, DefaultKeyMap.AddItem):
		return m, m.openItemForm()
	case key.Matches(msg, DefaultKeyMap.Edit):
		return m, m.openEditForm()
	case key.Matches(msg, DefaultKeyMap.Delete):
		m.mode = invoiceViewConfirmDelete
	}
	return m, nil
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading..."
	}

	switch m.mode {
	case invoiceViewNew, invoiceViewAddItem, invoiceViewEdit:
		return m.form.View(m.err)
	case invoiceViewDetail, invoiceViewConfirmDelete:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Invoices") + "\n"

	filter := "all statuses"
	if f := statusFilters[m.filterIdx]; f != "" {
		filter = string(f)
	}
	s += subtitleStyle.Render("  "+filter) + "\n\n"

	s += statusLine(m.statusMsg)
	s += errorLine(m.err)

	if len(m.invoices) == 0 && m.err == nil {
		s += subtitleStyle.Render("  No invoices found. Press 'n' to create one.")
		return s
	}

	// Header
	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-14s  %-22s  %-12s  %-12s  %12s  %s",
		"Number", "Client", "Date", "Due", "Total", "Status",
	)) + "\n"

	for i, inv := range m.invoices {
		invLine := fmt.Sprintf("  %-14s  %-22s  %-12s  %-12s  %12s  ",
			truncateStr(inv.Number, 14),
			truncateStr(inv.Client.Name, 22),
			formatDate(&inv.IssueDate),
			formatDate(inv.DueDate),
			formatMoney(inv.Total),
		)

		if i == m.cursor {
			s += selectedStyle.Render(invLine+string(inv.Status)) + "\n"
		} else {
			s += invLine + statusBadge(inv.Status) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view detail  n: new invoice  f: filter status")

	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return "No invoice selected"
	}

	var s string

	s += titleStyle.Render(fmt.Sprintf("Invoice %s", inv.Number)) + "\n\n"
	s += fmt.Sprintf("  Client:   %s\n", inv.Client.Name)
	if inv.Client.Email != "" {
		s += fmt.Sprintf("            %s\n", inv.Client.Email)
	}
	s += fmt.Sprintf("  Date:     %s\n", formatDate(&inv.IssueDate))
	s += fmt.Sprintf("  Due:      %s\n", formatDate(inv.DueDate))
	s += fmt.Sprintf("  Status:   %s\n", statusBadge(inv.Status))
	if tmpl, err := m.app.Templates.GetActive(); err == nil {
		s += fmt.Sprintf("  Template: %s\n", tmpl.Name)
	}
	s += "\n"

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-3s  %-34s  %8s  %-6s  %10s  %12s",
		"#", "Description", "Qty", "Unit", "Price", "Amount",
	)) + "\n"
	for _, item := range inv.Items {
		s += fmt.Sprintf("  %-3d  %-34s  %8s  %-6s  %10s  %12s\n",
			item.ID,
			truncateStr(item.Description, 34),
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			truncateStr(item.Unit, 6),
			formatMoney(item.UnitPrice),
			formatMoney(item.Quantity*item.UnitPrice),
		)
	}

	s += "\n"
	s += fmt.Sprintf("  Subtotal:  %12s\n", formatMoney(inv.Subtotal))
	s += fmt.Sprintf("  VAT %-5s  %12s\n", strconv.FormatFloat(inv.TaxRatePercent, 'f', -1, 64)+"%:", formatMoney(inv.TaxAmount))
	s += lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  Total:     %12s", formatMoney(inv.Total)),
	) + "\n\n"

	if m.exporting {
		s += fmt.Sprintf("  %s Exporting PDF...\n\n", m.spinner.View())
	}
	s += statusLine(m.statusMsg)
	s += errorLine(m.err)

	if m.mode == invoiceViewConfirmDelete {
		s += errStyle.Render(fmt.Sprintf("  Delete invoice %s? y/n", inv.Number))
		return s
	}

	s += helpStyle.Render("  x: export pdf  s: next status  a: add item  m: edit  d: delete  esc: back to list")

	return s
}
