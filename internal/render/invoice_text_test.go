package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func renderInvoice(taxRate, discountRate string) (*domain.Invoice, string) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	items := []*domain.LineItem{
		domain.NewLineItem("Consulting", d("10"), d("150")),
	}
	inv := domain.NewInvoice("INV-2026-00042", "Acme Corp", "billing@acme.test",
		items, d(taxRate), d(discountRate), 30, now)
	return inv, InvoiceText(inv, inv.Totals(now, d("0.001")))
}

func TestInvoiceText(t *testing.T) {
	_, out := renderInvoice("0.10", "0")

	assert.Contains(t, out, "INVOICE")
	assert.Contains(t, out, "Invoice #: INV-2026-00042")
	assert.Contains(t, out, "Date:      2026-01-10")
	assert.Contains(t, out, "Due Date:  2026-02-09")
	assert.Contains(t, out, "Status:    DRAFT")
	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "billing@acme.test")
	assert.Contains(t, out, "Consulting")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "Tax (10%)")
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, "TOTAL USD")
	assert.Contains(t, out, "1650.00")

	// No discount row when the rate is zero
	assert.NotContains(t, out, "Discount")
	assert.NotContains(t, out, "Overdue fee")
	assert.NotContains(t, out, "PAID on")
}

func TestInvoiceTextDiscount(t *testing.T) {
	_, out := renderInvoice("0.10", "0.20")

	assert.Contains(t, out, "Discount (20%)")
	assert.Contains(t, out, "300.00")
	assert.Contains(t, out, "1320.00")
}

func TestInvoiceTextFractionalTaxRate(t *testing.T) {
	_, out := renderInvoice("0.0825", "0")

	assert.Contains(t, out, "Tax (8.25%)")
}

func TestInvoiceTextOverdue(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	items := []*domain.LineItem{
		domain.NewLineItem("Consulting", d("10"), d("150")),
	}
	inv := domain.NewInvoice("INV-2026-00042", "Acme Corp", "billing@acme.test",
		items, d("0"), d("0"), 30, now)
	inv.Status = domain.InvoiceStatusOverdue

	at := inv.DueDate.AddDate(0, 0, 5)
	out := InvoiceText(inv, inv.Totals(at, d("0.001")))

	assert.Contains(t, out, "Status:    OVERDUE")
	assert.Contains(t, out, "Overdue fee")
	// 1500 * ((1.001)^5 - 1) rounded at the output boundary
	assert.Contains(t, out, "7.52")
}

func TestInvoiceTextPaid(t *testing.T) {
	inv, _ := renderInvoice("0", "0")
	paidAt := time.Date(2026, 2, 1, 16, 0, 0, 0, time.UTC)
	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &paidAt
	inv.PaymentMethod = "bank_transfer"

	out := InvoiceText(inv, inv.Totals(paidAt, d("0.001")))

	assert.Contains(t, out, "PAID on 2026-02-01 via bank_transfer")
}

func TestInvoiceTextNotes(t *testing.T) {
	inv, _ := renderInvoice("0", "0")
	inv.Notes = "Net 30, thank you"

	out := InvoiceText(inv, inv.Totals(inv.CreatedAt, d("0.001")))
	assert.Contains(t, out, "Notes: Net 30, thank you")
}

func TestInvoiceTextTruncatesLongDescriptions(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	items := []*domain.LineItem{
		domain.NewLineItem("An exceedingly long line item description", d("1"), d("10")),
	}
	inv := domain.NewInvoice("INV-2026-00001", "Acme Corp", "billing@acme.test",
		items, d("0"), d("0"), 30, now)

	out := InvoiceText(inv, inv.Totals(now, d("0.001")))

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), sheetWidth, "line too wide: %q", line)
	}
	assert.Contains(t, out, "...")
}
