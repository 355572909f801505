package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/app"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	outstanding    decimal.Decimal
	overdueCount   int
	overdueTotal   decimal.Decimal
	paidThisYear   decimal.Decimal
	recentInvoices []*domain.Invoice

	loading bool
	err     error
}

type dashboardDataMsg struct {
	outstanding    decimal.Decimal
	overdueCount   int
	overdueTotal   decimal.Decimal
	paidThisYear   decimal.Decimal
	recentInvoices []*domain.Invoice
	err            error
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
		now := time.Now().UTC()
		msg := dashboardDataMsg{}

		// Flip stale sent invoices first so the numbers reflect reality
		if _, err := m.app.Ledger.RefreshOverdue(ctx, now); err != nil {
			msg.err = err
			return msg
		}

		invoices, err := m.app.Ledger.List(ctx, repository.ListFilter{})
		if err != nil {
			msg.err = err
			return msg
		}

		for _, invoice := range invoices {
			total := m.app.Ledger.Totals(invoice, now).Total

			switch invoice.Status {
			case domain.InvoiceStatusSent:
				msg.outstanding = msg.outstanding.Add(total)
			case domain.InvoiceStatusOverdue:
				msg.outstanding = msg.outstanding.Add(total)
				msg.overdueCount++
				msg.overdueTotal = msg.overdueTotal.Add(total)
			case domain.InvoiceStatusPaid:
				if invoice.PaidAt != nil && invoice.PaidAt.Year() == now.Year() {
					msg.paidThisYear = msg.paidThisYear.Add(total)
				}
			}
		}

		// List is newest-first
		limit := 8
		if len(invoices) < limit {
			limit = len(invoices)
		}
		msg.recentInvoices = invoices[:limit]

		return msg
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.outstanding = msg.outstanding
		m.overdueCount = msg.overdueCount
		m.overdueTotal = msg.overdueTotal
		m.paidThisYear = msg.paidThisYear
		m.recentInvoices = msg.recentInvoices
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	s := fmt.Sprintf(
		"  Outstanding:    %-14s  Paid this year: %s\n  Overdue:        %d invoice(s), %s\n",
		formatMoney(m.outstanding),
		formatMoney(m.paidThisYear),
		m.overdueCount,
		formatMoney(m.overdueTotal),
	)

	s += "\n" + m.renderRecentInvoices()
	return s
}

func (m *DashboardModel) renderRecentInvoices() string {
	header := "  Recent Invoices\n"
	if len(m.recentInvoices) == 0 {
		return header + subtitleStyle.Render("  No invoices yet") + "\n"
	}

	now := time.Now().UTC()
	s := header
	for _, invoice := range m.recentInvoices {
		total := m.app.Ledger.Totals(invoice, now).Total
		s += fmt.Sprintf("  %-15s %-22s %10s  %s\n",
			invoice.Number,
			truncateStr(invoice.ClientName, 22),
			formatMoney(total),
			statusStyle(invoice.Status).Render(string(invoice.Status)),
		)
	}

	return s
}
