package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// IsValid reports whether s is one of the known statuses.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

type Invoice struct {
	ID            string
	Number        string
	ClientName    string
	ClientEmail   string
	TaxRate       decimal.Decimal
	DiscountRate  decimal.Decimal
	Status        InvoiceStatus
	DueDate       time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time
	PaymentMethod string
	// OverdueFee holds the fee frozen at payment time. It is zero until the
	// invoice is paid; unpaid invoices accrue their fee via Totals.
	OverdueFee decimal.Decimal
	Notes      string
	Currency   string

	// Related data (populated by repository)
	LineItems []*LineItem
}

// NewInvoice creates a new draft invoice due dueDays from now.
func NewInvoice(number, clientName, clientEmail string, items []*LineItem, taxRate, discountRate decimal.Decimal, dueDays int, now time.Time) *Invoice {
	inv := &Invoice{
		ID:           uuid.NewString(),
		Number:       number,
		ClientName:   strings.TrimSpace(clientName),
		ClientEmail:  strings.TrimSpace(clientEmail),
		TaxRate:      taxRate,
		DiscountRate: discountRate,
		Status:       InvoiceStatusDraft,
		DueDate:      now.AddDate(0, 0, dueDays),
		CreatedAt:    now,
		UpdatedAt:    now,
		Currency:     "USD",
		LineItems:    items,
	}
	for i, item := range inv.LineItems {
		item.InvoiceID = inv.ID
		item.Position = i
	}
	return inv
}

// CanSend reports whether the invoice may transition to sent.
func (i *Invoice) CanSend() bool {
	return i.Status == InvoiceStatusDraft
}

// CanPay reports whether the invoice may transition to paid.
func (i *Invoice) CanPay() bool {
	return i.Status == InvoiceStatusSent || i.Status == InvoiceStatusOverdue
}

// IsPaid reports whether the invoice has been paid.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// IsOverdue reports whether the invoice is past due and still unpaid at now.
// A sent invoice past its due date counts as overdue even before an explicit
// refresh has flipped its stored status.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status == InvoiceStatusOverdue {
		return true
	}
	return i.Status == InvoiceStatusSent && now.After(i.DueDate)
}

// DaysOverdue returns the number of whole days past the due date, minimum 0.
func (i *Invoice) DaysOverdue(now time.Time) int64 {
	if !now.After(i.DueDate) {
		return 0
	}
	return int64(now.Sub(i.DueDate) / (24 * time.Hour))
}

// Validate returns an error if the invoice is invalid.
func (i *Invoice) Validate() error {
	if i.Number == "" {
		return NewValidationError("number", "invoice number is required")
	}
	if strings.TrimSpace(i.ClientName) == "" {
		return NewValidationError("client_name", "client name is required")
	}
	if strings.TrimSpace(i.ClientEmail) == "" {
		return NewValidationError("client_email", "client email is required")
	}
	if len(i.LineItems) == 0 {
		return NewValidationError("line_items", "invoice must have at least one line item")
	}
	if !rateInRange(i.TaxRate) {
		return NewValidationError("tax_rate", "tax rate must be between 0 and 1")
	}
	if !rateInRange(i.DiscountRate) {
		return NewValidationError("discount_rate", "discount rate must be between 0 and 1")
	}
	if !i.Status.IsValid() {
		return NewValidationError("status", "unknown status "+string(i.Status))
	}
	if (i.PaidAt != nil) != (i.Status == InvoiceStatusPaid) {
		return NewValidationError("paid_at", "paid_at must be set exactly when status is paid")
	}
	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func rateInRange(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}
