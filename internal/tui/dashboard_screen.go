package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/service"
)

const dashboardRecent = 5

// DashboardModel represents the overview home screen
type DashboardModel struct {
	app *app.App

	// Data
	summary    *service.Dashboard
	revenue    map[time.Month]float64
	byCategory map[string]float64
	year       int

	loading bool
	err     error
}

type dashboardDataMsg struct {
	summary    *service.Dashboard
	revenue    map[time.Month]float64
	byCategory map[string]float64
	year       int
	err        error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := dashboardDataMsg{year: time.Now().Year()}

		summary, err := m.app.ReportService.GetDashboard(ctx, dashboardRecent)
		if err != nil {
			msg.err = fmt.Errorf("summary: %w", err)
			return msg
		}
		msg.summary = summary

		msg.revenue, err = m.app.ReportService.GetRevenueByMonth(ctx, msg.year)
		if err != nil {
			msg.err = fmt.Errorf("revenue: %w", err)
			return msg
		}

		msg.byCategory, err = m.app.ReportService.GetExpensesByCategory(ctx, service.ExpenseFilter{})
		if err != nil {
			msg.err = fmt.Errorf("expenses: %w", err)
			return msg
		}

		return msg
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.revenue = msg.revenue
		m.byCategory = msg.byCategory
		m.year = msg.year
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading overview..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	d := m.summary
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Invoices", fmt.Sprintf("%d", d.TotalInvoices), fmt.Sprintf("%d paid, %d unpaid", d.PaidCount, d.UnpaidCount)),
		card("Revenue", formatMoney(d.Revenue), "paid invoices"),
		card("Outstanding", formatMoney(d.Outstanding), "draft and pending"),
		card("Expenses", formatMoney(d.ExpensesTotal), formatMoney(d.ExpensesThisMonth)+" this month"),
		card("Net", formatMoney(d.Net), "revenue less expenses"),
	)

	var s string
	s += cards + "\n\n"
	s += m.renderRecentInvoices() + "\n"
	s += lipgloss.JoinHorizontal(lipgloss.Top, m.renderRevenue(), "    ", m.renderCategories())
	return s
}

func card(title, value, caption string) string {
	body := fmt.Sprintf("%s\n%s\n%s",
		subtitleStyle.Render(title),
		titleStyle.Render(value),
		subtitleStyle.Render(caption),
	)
	return boxStyle.Width(22).Render(body)
}

func (m *DashboardModel) renderRecentInvoices() string {
	header := "  Recent Invoices\n"
	if len(m.summary.Recent) == 0 {
		return header + subtitleStyle.Render("  No invoices yet") + "\n"
	}

	s := header
	for _, inv := range m.summary.Recent {
		s += fmt.Sprintf("  %-14s %-22s %12s  %s\n",
			truncateStr(inv.Number, 14),
			truncateStr(inv.Client.Name, 22),
			formatMoney(inv.Total),
			statusBadge(inv.Status),
		)
	}
	return s
}

// renderRevenue draws paid revenue per month as a bar chart
func (m *DashboardModel) renderRevenue() string {
	s := fmt.Sprintf("  Revenue %d\n", m.year)

	var peak float64
	for _, v := range m.revenue {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return s + subtitleStyle.Render("  No paid invoices this year") + "\n"
	}

	const barWidth = 24
	bar := lipgloss.NewStyle().Foreground(primaryColor)
	for month := time.January; month <= time.December; month++ {
		v := m.revenue[month]
		n := int(v / peak * barWidth)
		s += fmt.Sprintf("  %s %s%s %s\n",
			month.String()[:3],
			bar.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", barWidth-n),
			subtitleStyle.Render(formatMoney(v)),
		)
	}
	return s
}

func (m *DashboardModel) renderCategories() string {
	s := "  Expenses by Category\n"
	if len(m.byCategory) == 0 {
		return s + subtitleStyle.Render("  No expenses recorded") + "\n"
	}

	categories := make([]string, 0, len(m.byCategory))
	for c := range m.byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return m.byCategory[categories[i]] > m.byCategory[categories[j]]
	})

	for _, c := range categories {
		s += fmt.Sprintf("  %-22s %12s\n", truncateStr(c, 22), formatMoney(m.byCategory[c]))
	}
	return s
}
