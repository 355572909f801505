package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/app"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/service"
)

// ReportsModel represents the reports screen
type ReportsModel struct {
	app *app.App

	summary *service.SummaryReport
	revenue map[time.Month]decimal.Decimal
	year    int

	loading bool
	err     error
}

type reportsDataMsg struct {
	summary *service.SummaryReport
	revenue map[time.Month]decimal.Decimal
	err     error
}

// NewReportsModel creates a new reports model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:     a,
		year:    time.Now().UTC().Year(),
		loading: true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := m.app.Ledger.RefreshOverdue(ctx, time.Now().UTC()); err != nil {
			return reportsDataMsg{err: err}
		}

		summary, err := m.app.Reports.Summary(ctx, nil, nil)
		if err != nil {
			return reportsDataMsg{err: err}
		}

		revenue, err := m.app.Reports.RevenueByMonth(ctx, m.year)
		if err != nil {
			return reportsDataMsg{err: err}
		}

		return reportsDataMsg{summary: summary, revenue: revenue}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.revenue = msg.revenue
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return "Loading reports..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("  All-Time Summary") + "\n\n")
	b.WriteString(fmt.Sprintf("  Total invoices:  %d (%s)\n",
		m.summary.TotalInvoices, formatMoney(m.summary.TotalInvoiced)))
	b.WriteString(fmt.Sprintf("  Draft:           %d\n", m.summary.DraftCount))
	b.WriteString(fmt.Sprintf("  Sent:            %d\n", m.summary.SentCount))
	b.WriteString(fmt.Sprintf("  Paid:            %d (%s)\n",
		m.summary.PaidCount, formatMoney(m.summary.PaidTotal)))
	b.WriteString(fmt.Sprintf("  Overdue:         %d (%s)\n",
		m.summary.OverdueCount, formatMoney(m.summary.OverdueTotal)))
	b.WriteString(fmt.Sprintf("  Collection rate: %s%%\n",
		m.summary.CollectionRate.StringFixed(1)))

	b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("  Revenue by Month (%d)", m.year)) + "\n\n")
	for month := time.January; month <= time.December; month++ {
		amount := m.revenue[month]
		if amount.IsZero() {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-10s %12s\n", month.String(), formatMoney(amount)))
	}
	if m.allZero() {
		b.WriteString(subtitleStyle.Render("  No payments recorded this year") + "\n")
	}

	return b.String()
}

func (m *ReportsModel) allZero() bool {
	for _, amount := range m.revenue {
		if !amount.IsZero() {
			return false
		}
	}
	return true
}
