package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/app"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/render"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
)

// invoicesViewMode represents the current view within the invoices screen
type invoicesViewMode int

const (
	invoicesViewList invoicesViewMode = iota
	invoicesViewDetail
	invoicesViewPayPrompt
)

// InvoicesModel represents the invoices screen
type InvoicesModel struct {
	app *app.App

	mode     invoicesViewMode
	invoices []*domain.Invoice
	cursor   int
	selected *domain.Invoice

	payInput textinput.Model

	loading bool
	err     error
	status  string
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

type invoiceActionMsg struct {
	invoice *domain.Invoice
	action  string
	err     error
}

// NewInvoicesModel creates a new invoices model
func NewInvoicesModel(a *app.App) tea.Model {
	payInput := textinput.New()
	payInput.Placeholder = "bank_transfer"
	payInput.CharLimit = 40
	payInput.Width = 30

	return &InvoicesModel{
		app:      a,
		mode:     invoicesViewList,
		payInput: payInput,
		loading:  true,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadData()
}

// IsCapturingInput implements InputCapturer
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoicesViewPayPrompt
}

func (m *InvoicesModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := m.app.Ledger.RefreshOverdue(ctx, time.Now().UTC()); err != nil {
			return invoicesDataMsg{err: err}
		}
		invoices, err := m.app.Ledger.List(ctx, repository.ListFilter{})
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) sendInvoice(id string) tea.Cmd {
	return func() tea.Msg {
		invoice, err := m.app.Ledger.Send(context.Background(), id)
		return invoiceActionMsg{invoice: invoice, action: "sent", err: err}
	}
}

func (m *InvoicesModel) payInvoice(id, method string) tea.Cmd {
	return func() tea.Msg {
		invoice, err := m.app.Ledger.Pay(context.Background(), id, method)
		return invoiceActionMsg{invoice: invoice, action: "paid", err: err}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = 0
		}
		// Keep the detail view in sync after a refresh
		if m.selected != nil {
			for _, invoice := range m.invoices {
				if invoice.ID == m.selected.ID {
					m.selected = invoice
					break
				}
			}
		}
		return m, nil

	case invoiceActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Invoice %s %s", msg.invoice.Number, msg.action)
		m.selected = msg.invoice
		return m, m.loadData()

	case RefreshDataMsg:
		m.loading = true
		m.status = ""
		return m, m.loadData()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m *InvoicesModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case invoicesViewPayPrompt:
		switch msg.String() {
		case "enter":
			method := strings.TrimSpace(m.payInput.Value())
			if method == "" {
				method = m.payInput.Placeholder
			}
			m.mode = invoicesViewDetail
			m.payInput.Blur()
			return m, m.payInvoice(m.selected.ID, method)
		case "esc":
			m.mode = invoicesViewDetail
			m.payInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.payInput, cmd = m.payInput.Update(msg)
		return m, cmd

	case invoicesViewDetail:
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = invoicesViewList
			m.selected = nil
			m.status = ""
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Send):
			if m.selected != nil && m.selected.CanSend() {
				return m, m.sendInvoice(m.selected.ID)
			}
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Pay):
			if m.selected != nil && m.selected.CanPay() {
				m.mode = invoicesViewPayPrompt
				m.payInput.SetValue("")
				m.payInput.Focus()
				return m, textinput.Blink
			}
			return m, nil
		}

	case invoicesViewList:
		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.invoices)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Select):
			if len(m.invoices) > 0 {
				m.selected = m.invoices[m.cursor]
				m.mode = invoicesViewDetail
				m.status = ""
			}
			return m, nil
		}
	}

	return m, nil
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading invoices..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	switch m.mode {
	case invoicesViewDetail, invoicesViewPayPrompt:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	if len(m.invoices) == 0 {
		return subtitleStyle.Render("  No invoices yet. Create one with the create command.")
	}

	now := time.Now().UTC()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %-15s %-22s %-12s %10s  %s\n",
		"NUMBER", "CLIENT", "DUE", "TOTAL", "STATUS"))

	for i, invoice := range m.invoices {
		total := m.app.Ledger.Totals(invoice, now).Total
		line := fmt.Sprintf("%-15s %-22s %-12s %10s  %s",
			invoice.Number,
			truncateStr(invoice.ClientName, 22),
			invoice.DueDate.Format("2006-01-02"),
			formatMoney(total),
			string(invoice.Status),
		)
		if i == m.cursor {
			b.WriteString("> " + selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + subtitleStyle.Render("  enter: view  ↑/↓: move"))
	if m.status != "" {
		b.WriteString("\n  " + m.status)
	}
	return b.String()
}

func (m *InvoicesModel) viewDetail() string {
	if m.selected == nil {
		return "No invoice selected"
	}

	now := time.Now().UTC()
	totals := m.app.Ledger.Totals(m.selected, now)

	var b strings.Builder
	b.WriteString(render.InvoiceText(m.selected, totals))

	var hints []string
	if m.selected.CanSend() {
		hints = append(hints, "s: send")
	}
	if m.selected.CanPay() {
		hints = append(hints, "p: pay")
	}
	hints = append(hints, "esc: back")
	b.WriteString("\n" + subtitleStyle.Render("  "+strings.Join(hints, "  ")))

	if m.mode == invoicesViewPayPrompt {
		b.WriteString("\n\n  Payment method: " + m.payInput.View())
		b.WriteString("\n  " + subtitleStyle.Render("enter: confirm  esc: cancel"))
	}

	if m.status != "" {
		b.WriteString("\n\n  " + m.status)
	}

	return b.String()
}
