package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/domain"
)

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	switch s {
	case "today":
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	case "yesterday":
		return time.Now().UTC().Add(-24 * time.Hour).Truncate(24 * time.Hour), nil
	default:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// parseRate parses a fractional rate flag value (e.g. "0.1" for 10%)
func parseRate(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return rate, nil
}

// refreshOverdue flips sent-past-due invoices to overdue before any read that
// depends on current status. Status is not recomputed lazily inside totals.
func refreshOverdue(ctx context.Context) error {
	_, err := appInstance.Ledger.RefreshOverdue(ctx, time.Now().UTC())
	return err
}

// printInvoice prints a one-look summary of an invoice with its totals
func printInvoice(invoice *domain.Invoice) {
	totals := appInstance.Ledger.Totals(invoice, time.Now().UTC())

	fmt.Printf("Invoice:  %s\n", invoice.Number)
	fmt.Printf("ID:       %s\n", invoice.ID)
	fmt.Printf("Client:   %s <%s>\n", invoice.ClientName, invoice.ClientEmail)
	fmt.Printf("Status:   %s\n", invoice.Status)
	fmt.Printf("Created:  %s\n", invoice.CreatedAt.Format("2006-01-02"))
	fmt.Printf("Due:      %s\n", invoice.DueDate.Format("2006-01-02"))
	if invoice.PaidAt != nil {
		fmt.Printf("Paid:     %s via %s\n", invoice.PaidAt.Format("2006-01-02"), invoice.PaymentMethod)
	}
	fmt.Printf("Subtotal: %s %s\n", totals.Subtotal.StringFixed(2), invoice.Currency)
	if totals.DiscountAmount.IsPositive() {
		fmt.Printf("Discount: -%s %s\n", totals.DiscountAmount.StringFixed(2), invoice.Currency)
	}
	if totals.TaxAmount.IsPositive() {
		fmt.Printf("Tax:      %s %s\n", totals.TaxAmount.StringFixed(2), invoice.Currency)
	}
	if totals.OverdueFee.IsPositive() {
		fmt.Printf("Overdue:  %s %s\n", totals.OverdueFee.StringFixed(2), invoice.Currency)
	}
	fmt.Printf("Total:    %s %s\n", totals.Total.StringFixed(2), invoice.Currency)
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
