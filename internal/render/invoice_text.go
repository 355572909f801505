// Package render produces the human-readable invoice output. The layout is a
// fixed 60-column ruled sheet suitable for printing or PDF conversion; no
// binary PDF is generated.
package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
)

const sheetWidth = 60

// InvoiceText renders an invoice with the given totals breakdown as text.
// Monetary values are rounded to 2 decimal places here, at the output
// boundary only.
func InvoiceText(inv *domain.Invoice, t domain.Totals) string {
	heavy := strings.Repeat("=", sheetWidth)
	light := strings.Repeat("-", sheetWidth)

	lines := []string{
		heavy,
		"  INVOICE",
		heavy,
		fmt.Sprintf("  Invoice #: %s", inv.Number),
		fmt.Sprintf("  Date:      %s", inv.CreatedAt.Format("2006-01-02")),
		fmt.Sprintf("  Due Date:  %s", inv.DueDate.Format("2006-01-02")),
		fmt.Sprintf("  Status:    %s", strings.ToUpper(string(inv.Status))),
		"",
		"  Bill To:",
		fmt.Sprintf("  %s", inv.ClientName),
		fmt.Sprintf("  %s", inv.ClientEmail),
		"",
		light,
		fmt.Sprintf("  %-26s %6s %11s %11s", "Description", "Qty", "Unit Price", "Total"),
		light,
	}

	for _, li := range inv.LineItems {
		lines = append(lines, fmt.Sprintf("  %-26s %6s %11s %11s",
			truncate(li.Description, 26),
			li.Qty.StringFixed(2),
			li.UnitPrice.StringFixed(2),
			li.Total().StringFixed(2),
		))
	}

	lines = append(lines,
		light,
		fmt.Sprintf("  %-46s %11s", "Subtotal", t.Subtotal.StringFixed(2)),
	)

	if inv.DiscountRate.IsPositive() {
		label := fmt.Sprintf("Discount (%s%%)", percent(inv.DiscountRate))
		lines = append(lines, fmt.Sprintf("  %-46s -%10s", label, t.DiscountAmount.StringFixed(2)))
	}
	if inv.TaxRate.IsPositive() {
		label := fmt.Sprintf("Tax (%s%%)", percent(inv.TaxRate))
		lines = append(lines, fmt.Sprintf("  %-46s %11s", label, t.TaxAmount.StringFixed(2)))
	}
	if t.OverdueFee.IsPositive() {
		lines = append(lines, fmt.Sprintf("  %-46s %11s", "Overdue fee", t.OverdueFee.StringFixed(2)))
	}

	lines = append(lines,
		heavy,
		fmt.Sprintf("  %-46s %11s", "TOTAL "+inv.Currency, t.Total.StringFixed(2)),
		heavy,
	)

	if inv.PaidAt != nil {
		lines = append(lines, fmt.Sprintf("  PAID on %s via %s",
			inv.PaidAt.Format("2006-01-02"), inv.PaymentMethod))
	}
	if inv.Notes != "" {
		lines = append(lines, "", fmt.Sprintf("  Notes: %s", inv.Notes))
	}

	return strings.Join(lines, "\n")
}

// percent renders a fractional rate as a percentage, trimming trailing zeros
// (0.1 -> "10", 0.0825 -> "8.25").
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
