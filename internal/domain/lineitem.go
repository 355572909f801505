package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Position    int
}

// NewLineItem creates a line item with a fresh id.
func NewLineItem(description string, qty, unitPrice decimal.Decimal) *LineItem {
	return &LineItem{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Qty:         qty,
		UnitPrice:   unitPrice,
	}
}

// Total returns qty * unit_price, unrounded.
func (li *LineItem) Total() decimal.Decimal {
	return li.Qty.Mul(li.UnitPrice)
}

// Validate returns an error if the line item is invalid.
func (li *LineItem) Validate() error {
	if strings.TrimSpace(li.Description) == "" {
		return NewValidationError("description", "line item description is required")
	}
	if !li.Qty.IsPositive() {
		return NewValidationError("qty", "quantity must be positive")
	}
	if li.UnitPrice.IsNegative() {
		return NewValidationError("unit_price", "unit price cannot be negative")
	}
	return nil
}
